package live

import (
	"math"
	"testing"
)

type meterReading struct {
	source Source
	level  float64
}

func testMeter() (*Meter, *[]meterReading) {
	var readings []meterReading
	cfg := DefaultConfig()
	m := NewMeter(cfg, func(source Source, level float64) {
		readings = append(readings, meterReading{source, level})
	})
	return m, &readings
}

func loudWindow() []float32 {
	out := make([]float32, meterWindow)
	for i := range out {
		out[i] = float32(0.8 * math.Sin(2*math.Pi*8*float64(i)/meterWindow))
	}
	return out
}

func TestMeterAttributesAssistantWhileSpeaking(t *testing.T) {
	m, readings := testMeter()
	m.TapOutput(loudWindow())
	m.TapInput(loudWindow()) // user talks too; assistant still wins

	m.tick()
	if len(*readings) != 1 {
		t.Fatalf("got %d readings, want exactly 1 per tick", len(*readings))
	}
	r := (*readings)[0]
	if r.source != SourceAI {
		t.Errorf("source = %s, want ai", r.source)
	}
	if r.level <= 0 {
		t.Errorf("level = %f, want > 0", r.level)
	}
}

func TestMeterFallsBackToUser(t *testing.T) {
	m, readings := testMeter()
	m.TapInput(loudWindow())

	m.tick()
	r := (*readings)[0]
	if r.source != SourceUser {
		t.Errorf("source = %s, want user", r.source)
	}
	if r.level <= 0 {
		t.Errorf("level = %f, want > 0", r.level)
	}
}

func TestMeterSilenceReportsUserZero(t *testing.T) {
	m, readings := testMeter()
	m.tick()
	r := (*readings)[0]
	if r.source != SourceUser || r.level != 0 {
		t.Errorf("silent tick = (%s, %f), want (user, 0)", r.source, r.level)
	}
}

func TestMeterConsumesTaps(t *testing.T) {
	m, readings := testMeter()
	m.TapOutput(loudWindow())
	m.tick()
	m.tick()

	if (*readings)[0].source != SourceAI {
		t.Fatalf("first tick source = %s, want ai", (*readings)[0].source)
	}
	// The assistant stopped; the stale window must not replay.
	if (*readings)[1].source != SourceUser {
		t.Errorf("second tick source = %s, want user", (*readings)[1].source)
	}
}

func TestMeterGainsApplied(t *testing.T) {
	cfg := DefaultConfig()
	var aiLevel, userLevel float64
	m := NewMeter(cfg, func(source Source, level float64) {
		if source == SourceAI {
			aiLevel = level
		} else {
			userLevel = level
		}
	})

	m.TapOutput(loudWindow())
	m.tick()
	m.TapInput(loudWindow())
	m.tick()

	// Same signal, different gains: the ratio must match 3.0/2.5.
	ratio := aiLevel / userLevel
	if math.Abs(ratio-cfg.AIMeterGain/cfg.UserMeterGain) > 0.01 {
		t.Errorf("gain ratio = %f, want %f", ratio, cfg.AIMeterGain/cfg.UserMeterGain)
	}
}

func TestMeterStartStopIdempotent(t *testing.T) {
	m, _ := testMeter()
	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}
