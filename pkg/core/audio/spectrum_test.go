package audio

import (
	"math"
	"testing"
)

func TestSpectrumLevelSilence(t *testing.T) {
	a := NewSpectrumAnalyzer(256)
	if got := a.Level(make([]float32, 256)); got != 0 {
		t.Errorf("Level(silence) = %f, want 0", got)
	}
}

func TestSpectrumLevelSineNearRMS(t *testing.T) {
	a := NewSpectrumAnalyzer(256)
	// Bin-aligned sine: 8 full cycles across the window.
	in := make([]float32, 256)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 8 * float64(i) / 256))
	}
	got := a.Level(in)
	if math.Abs(got-1/math.Sqrt2) > 0.02 {
		t.Errorf("Level(full-scale sine) = %f, want ~%f", got, 1/math.Sqrt2)
	}
}

func TestSpectrumLevelScalesWithAmplitude(t *testing.T) {
	a := NewSpectrumAnalyzer(256)
	loud := make([]float32, 256)
	quiet := make([]float32, 256)
	for i := range loud {
		s := math.Sin(2 * math.Pi * 8 * float64(i) / 256)
		loud[i] = float32(s)
		quiet[i] = float32(s * 0.1)
	}
	ratio := a.Level(loud) / a.Level(quiet)
	if math.Abs(ratio-10) > 0.5 {
		t.Errorf("level ratio = %f, want ~10", ratio)
	}
}

func TestSpectrumLevelWrongWindowSize(t *testing.T) {
	a := NewSpectrumAnalyzer(256)
	if got := a.Level(make([]float32, 128)); got != 0 {
		t.Errorf("Level(wrong size) = %f, want 0", got)
	}
}
