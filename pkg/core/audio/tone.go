package audio

import "math"

// UI cue tones, synthesized as float32 PCM ready for the playback path.
// Amplitudes are intentionally low so cues sit under assistant speech.

// StartTone is a 300 ms sine sweeping exponentially from 220 Hz to 880 Hz
// with a linear fade to silence. Played when the session connects.
func StartTone(sampleRate int) []float32 {
	n := samplesFor(sampleRate, 0.3)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		progress := t / 0.3
		freq := 220 * math.Pow(880.0/220.0, progress)
		gain := 0.05 * (1 - progress)
		out[i] = float32(gain * math.Sin(2*math.Pi*freq*t))
	}
	return out
}

// ProcessTone is a 100 ms 1200 Hz triangle blip with an exponential decay.
// Played when a tool call arrives, before it is executed.
func ProcessTone(sampleRate int) []float32 {
	n := samplesFor(sampleRate, 0.1)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		gain := 0.03 * math.Pow(0.001/0.03, t/0.1)
		out[i] = float32(gain * triangle(1200*t))
	}
	return out
}

// SuccessTone is a rising C5-E5-G5 arpeggio, each note staggered by 50 ms
// and decaying over half a second. Played after a transaction is recorded.
func SuccessTone(sampleRate int) []float32 {
	freqs := []float64{523.25, 659.25, 783.99}
	total := 0.5 + float64(len(freqs)-1)*0.05
	out := make([]float32, samplesFor(sampleRate, total))
	for i, freq := range freqs {
		offset := float64(i) * 0.05
		start := samplesFor(sampleRate, offset)
		for j := start; j < len(out); j++ {
			t := float64(j)/float64(sampleRate) - offset
			if t > 0.5 {
				break
			}
			gain := 0.05 * math.Pow(0.001/0.05, t/0.5)
			out[j] += float32(gain * math.Sin(2*math.Pi*freq*t))
		}
	}
	return out
}

func samplesFor(sampleRate int, seconds float64) int {
	n := int(float64(sampleRate) * seconds)
	if n < 0 {
		n = 0
	}
	return n
}

// triangle evaluates a unit-amplitude triangle wave at phase x (in cycles).
func triangle(x float64) float64 {
	frac := x - math.Floor(x)
	return 4*math.Abs(frac-0.5) - 1
}
