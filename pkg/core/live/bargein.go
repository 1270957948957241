package live

import "github.com/finanvoice/voz/pkg/core/audio"

// BargeInDetector decides when captured audio counts as the user talking
// over the assistant. A frame whose RMS energy crosses the threshold
// triggers; the caller flushes pending playback before forwarding the
// frame so the assistant stops speaking immediately.
type BargeInDetector struct {
	threshold float64
}

// NewBargeInDetector creates a detector with the given RMS threshold.
func NewBargeInDetector(threshold float64) *BargeInDetector {
	return &BargeInDetector{threshold: threshold}
}

// Triggered reports whether the frame's energy crosses the threshold.
func (d *BargeInDetector) Triggered(samples []float32) bool {
	return audio.RMSEnergy(samples) > d.threshold
}
