package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectrumAnalyzer reduces a short sample window to a single level in
// [0, 1]: the RMS of the window computed from its FFT power spectrum. This
// is the measure the level meter reports each tick. Going through the
// spectrum keeps the door open for per-band weighting without changing the
// meter plumbing.
type SpectrumAnalyzer struct {
	fft    *fourier.FFT
	window int
	in     []float64
}

// NewSpectrumAnalyzer creates an analyzer over windows of the given size.
func NewSpectrumAnalyzer(window int) *SpectrumAnalyzer {
	return &SpectrumAnalyzer{
		fft:    fourier.NewFFT(window),
		window: window,
		in:     make([]float64, window),
	}
}

// WindowSize returns the number of samples the analyzer consumes per call.
func (a *SpectrumAnalyzer) WindowSize() int { return a.window }

// Level computes the spectral RMS of the window, a value in [0, 1].
// The input must have exactly WindowSize samples.
func (a *SpectrumAnalyzer) Level(samples []float32) float64 {
	if len(samples) != a.window {
		return 0
	}
	for i, s := range samples {
		a.in[i] = float64(s)
	}
	coeffs := a.fft.Coefficients(nil, a.in)

	// Total power via Parseval. The real transform carries only the
	// positive bins, so interior bins count twice.
	var sum float64
	for i, c := range coeffs {
		re := real(c)
		im := imag(c)
		p := re*re + im*im
		if i != 0 && i != len(coeffs)-1 {
			p *= 2
		}
		sum += p
	}
	level := math.Sqrt(sum) / float64(a.window)
	if level > 1 {
		level = 1
	}
	return level
}
