package audio

import "testing"

func TestToneLengths(t *testing.T) {
	const rate = 24000
	if got, want := len(StartTone(rate)), rate*3/10; got != want {
		t.Errorf("StartTone length = %d, want %d", got, want)
	}
	if got, want := len(ProcessTone(rate)), rate/10; got != want {
		t.Errorf("ProcessTone length = %d, want %d", got, want)
	}
	// Success arpeggio: 500ms decay plus two 50ms staggers.
	if got, want := len(SuccessTone(rate)), rate*6/10; got != want {
		t.Errorf("SuccessTone length = %d, want %d", got, want)
	}
}

func TestTonesStayQuiet(t *testing.T) {
	const rate = 24000
	for name, tone := range map[string][]float32{
		"start":   StartTone(rate),
		"process": ProcessTone(rate),
		"success": SuccessTone(rate),
	} {
		peak := PeakAmplitude(tone)
		if peak == 0 {
			t.Errorf("%s tone is silent", name)
		}
		if peak > 0.2 {
			t.Errorf("%s tone peak %f exceeds cue ceiling", name, peak)
		}
	}
}

func TestStartToneFadesOut(t *testing.T) {
	tone := StartTone(24000)
	head := PeakAmplitude(tone[:len(tone)/10])
	tail := PeakAmplitude(tone[len(tone)-len(tone)/10:])
	if tail >= head {
		t.Errorf("start tone does not fade: head=%f tail=%f", head, tail)
	}
}
