package live

import (
	"sync"
	"time"

	"github.com/finanvoice/voz/pkg/core/audio"
)

// meterWindow is the number of samples the meter analyzes per tick.
const meterWindow = 256

// Meter reports a single audio level per tick. Capture and playback each
// tap their samples into a ring; on every tick the meter analyzes the
// freshest window of both and attributes the reading to exactly one side:
// the assistant while output is above the floor, the user otherwise. The
// UI renders one pulsing orb, so it never gets two sources at once.
type Meter struct {
	input  *audio.Ring
	output *audio.Ring

	inAnalyzer  *audio.SpectrumAnalyzer
	outAnalyzer *audio.SpectrumAnalyzer

	floor    float64
	aiGain   float64
	userGain float64
	interval time.Duration
	report   func(Source, float64)

	mu   sync.Mutex
	stop chan struct{}
}

// NewMeter creates a meter reporting through report.
func NewMeter(cfg Config, report func(Source, float64)) *Meter {
	return &Meter{
		input:       audio.NewRing(cfg.CaptureSampleRate), // one second of headroom
		output:      audio.NewRing(cfg.ReceiveSampleRate),
		inAnalyzer:  audio.NewSpectrumAnalyzer(meterWindow),
		outAnalyzer: audio.NewSpectrumAnalyzer(meterWindow),
		floor:       cfg.OutputLevelFloor,
		aiGain:      cfg.AIMeterGain,
		userGain:    cfg.UserMeterGain,
		interval:    cfg.MeterInterval,
		report:      report,
	}
}

// TapInput records captured microphone samples.
func (m *Meter) TapInput(samples []float32) { m.input.Write(samples) }

// TapOutput records assistant speech as it is written to the device.
func (m *Meter) TapOutput(samples []float32) { m.output.Write(samples) }

// Start begins ticking. Idempotent while running.
func (m *Meter) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	go m.run(m.stop)
}

// Stop halts ticking and clears both taps.
func (m *Meter) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop == nil {
		return
	}
	close(m.stop)
	m.stop = nil
	m.input.Reset()
	m.output.Reset()
}

func (m *Meter) run(stop chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick performs one attribution and report. Both taps are consumed so a
// side that went quiet reads as silence on the next tick instead of
// replaying its last loud window.
func (m *Meter) tick() {
	outWindow := m.output.ReadLast(meterWindow)
	m.output.Reset()
	inWindow := m.input.ReadLast(meterWindow)
	m.input.Reset()

	outLevel := m.outAnalyzer.Level(outWindow)
	if outLevel > m.floor {
		m.report(SourceAI, outLevel*m.aiGain)
		return
	}
	m.report(SourceUser, m.inAnalyzer.Level(inWindow)*m.userGain)
}
