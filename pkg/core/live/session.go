package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finanvoice/voz/pkg/core"
	"github.com/finanvoice/voz/pkg/core/audio"
	"github.com/finanvoice/voz/pkg/core/finance"
	"github.com/finanvoice/voz/pkg/gemini"
)

// Transport is the realtime connection the session speaks through.
// *gemini.Client satisfies it.
type Transport interface {
	SendAudio(payload string) error
	SendText(text string) error
	SendToolAck(id, name string, response map[string]any) error
	Messages() <-chan gemini.ServerMessage
	Close() error
	Err() error
}

// Dialer opens a transport. Injectable so tests can run without a network.
type Dialer func(ctx context.Context, cfg gemini.Config) (Transport, error)

// Capture is the microphone. Start begins delivering frames to onFrame
// from a device thread; Suspend pauses delivery without releasing the
// device, so a later Resume is cheap.
type Capture interface {
	Start(onFrame func(samples []float32)) error
	Suspend() error
	Resume() error
}

// Render is the speaker: a playback sink plus suspend/resume. Suspend
// keeps the device open for the next session.
type Render interface {
	Sink
	Suspend() error
	Resume() error
}

// primingMessage nudges the model into an opening greeting once the
// session is live.
const primingMessage = "SISTEMA: O usuário conectou. Dê a saudação inicial curta e amigável, perguntando se há novas receitas, despesas ou investimentos."

// Options wires a session's collaborators.
type Options struct {
	Config    Config
	Capture   Capture
	Render    Render
	Callbacks Callbacks
	// Dialer defaults to the production realtime endpoint.
	Dialer Dialer
	Logger *zap.Logger
	// Now defaults to time.Now; injectable for tests.
	Now func() time.Time
}

// Session is the voice session controller. One session handles one
// connect/disconnect cycle at a time; Connect after Disconnect reuses the
// same devices.
type Session struct {
	cfg       Config
	capture   Capture
	render    Render
	callbacks Callbacks
	dial      Dialer
	log       *zap.Logger
	now       func() time.Time

	scheduler *Scheduler
	meter     *Meter
	bargeIn   *BargeInDetector

	mu             sync.Mutex
	status         Status
	transport      Transport
	loopDone       chan struct{}
	captureStarted bool
	intentional    bool
}

// NewSession creates a session. The devices are not touched until Connect.
func NewSession(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	dial := opts.Dialer
	if dial == nil {
		dial = func(ctx context.Context, cfg gemini.Config) (Transport, error) {
			return gemini.Connect(ctx, cfg)
		}
	}
	s := &Session{
		cfg:       opts.Config,
		capture:   opts.Capture,
		render:    opts.Render,
		callbacks: opts.Callbacks,
		dial:      dial,
		log:       log,
		now:       now,
		status:    StatusDisconnected,
		bargeIn:   NewBargeInDetector(opts.Config.BargeInThreshold),
	}
	s.meter = NewMeter(opts.Config, opts.Callbacks.OnAudioLevel)
	s.scheduler = NewScheduler(&meteredSink{sink: opts.Render, meter: s.meter}, opts.Config.LatencyEpsilon, log)
	return s
}

// meteredSink tees everything written to the speaker into the output tap.
type meteredSink struct {
	sink  Sink
	meter *Meter
}

func (m *meteredSink) Write(samples []float32) error {
	m.meter.TapOutput(samples)
	return m.sink.Write(samples)
}

func (m *meteredSink) Flush() error { return m.sink.Flush() }

// Status returns the current connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Connect validates configuration, opens the microphone, dials the
// realtime endpoint primed with the snapshot's balance, and starts the
// receive loop. A configuration failure reports the error state without
// touching any device or the network. Connect while a session is active
// tears the old one down first, then proceeds as a fresh connect.
func (s *Session) Connect(ctx context.Context, snapshot finance.Snapshot) error {
	s.mu.Lock()
	active := s.status == StatusConnecting || s.status == StatusConnected
	done := s.loopDone
	s.mu.Unlock()
	if active {
		s.Disconnect()
		if done != nil {
			<-done
		}
	}

	s.mu.Lock()
	s.intentional = false
	s.mu.Unlock()

	if s.cfg.APIKey == "" {
		s.setStatus(StatusError)
		s.callbacks.OnError(core.MsgMissingAPIKey)
		return core.NewConfigurationError(core.MsgMissingAPIKey)
	}

	s.setStatus(StatusConnecting)

	if err := s.render.Resume(); err != nil {
		return s.failConnect(core.NewDeviceError(err.Error()))
	}
	if err := s.startCapture(); err != nil {
		_ = s.render.Suspend()
		return s.failConnect(err)
	}

	transport, err := s.dial(ctx, gemini.Config{
		Endpoint:          s.cfg.Endpoint,
		APIKey:            s.cfg.APIKey,
		Model:             s.cfg.Model,
		Voice:             s.cfg.Voice,
		SystemInstruction: s.systemInstruction(snapshot),
		Tools:             ToolDeclarations(),
		ReceiveSampleRate: s.cfg.ReceiveSampleRate,
		Logger:            s.log,
	})
	if err != nil {
		_ = s.capture.Suspend()
		_ = s.render.Suspend()
		return s.failConnect(core.ClassifyRemote(err))
	}

	loopDone := make(chan struct{})
	s.mu.Lock()
	s.transport = transport
	s.loopDone = loopDone
	s.mu.Unlock()

	s.setStatus(StatusConnected)
	s.scheduler.Schedule(&audio.Buffer{
		SampleRate: s.cfg.ReceiveSampleRate,
		Data:       [][]float32{audio.StartTone(s.cfg.ReceiveSampleRate)},
	})
	s.meter.Start()
	go s.receiveLoop(transport, loopDone)

	if err := transport.SendText(primingMessage); err != nil {
		s.log.Debug("priming message failed", zap.Error(err))
	}
	return nil
}

// failConnect reports err and lands the session in the error state.
func (s *Session) failConnect(err *core.Error) error {
	s.setStatus(StatusError)
	s.callbacks.OnError(err.Message)
	return err
}

func (s *Session) startCapture() *core.Error {
	s.mu.Lock()
	started := s.captureStarted
	s.mu.Unlock()

	if started {
		if err := s.capture.Resume(); err != nil {
			return core.NewDeviceError(err.Error())
		}
		return nil
	}
	if err := s.capture.Start(s.onCaptureFrame); err != nil {
		if coreErr, ok := err.(*core.Error); ok {
			return coreErr
		}
		return core.NewDeviceError(err.Error())
	}
	s.mu.Lock()
	s.captureStarted = true
	s.mu.Unlock()
	return nil
}

// systemInstruction builds the prompt the model is primed with, including
// the month's available balance captured at connect time. The snapshot is
// not refreshed mid-session.
func (s *Session) systemInstruction(snapshot finance.Snapshot) string {
	if s.cfg.SystemInstruction != "" {
		return s.cfg.SystemInstruction
	}
	now := s.now()
	return fmt.Sprintf(
		"Você é o Finança Voice. Fale pt-BR. Hoje: %s. %s Diferencie 'Reserva' (segurança) de 'Investimento' (multiplicação). Respostas curtas.",
		now.Format("02/01/2006"),
		finance.BalanceSummary(snapshot.Transactions, now),
	)
}

// onCaptureFrame runs on the capture device thread for every microphone
// frame: meter the input, cut assistant playback on barge-in, then
// downsample, encode, and stream the frame out. Send failures are
// swallowed so a transient hiccup never kills capture.
func (s *Session) onCaptureFrame(samples []float32) {
	s.meter.TapInput(samples)

	if s.bargeIn.Triggered(samples) && s.scheduler.Pending() > 0 {
		s.scheduler.Flush()
	}

	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()
	if transport == nil {
		return
	}

	resampled := audio.Resample(samples, s.cfg.CaptureSampleRate, s.cfg.SendSampleRate)
	if len(resampled) == 0 {
		return
	}
	if err := transport.SendAudio(audio.EncodeBase64(resampled)); err != nil {
		s.log.Debug("audio send failed", zap.Error(err))
	}
}

// receiveLoop drains the transport and finishes the teardown when the
// connection ends. done is closed after the teardown completes, so a
// superseding Connect can wait for it.
func (s *Session) receiveLoop(transport Transport, done chan struct{}) {
	defer close(done)
	for msg := range transport.Messages() {
		switch m := msg.(type) {
		case gemini.AudioMessage:
			s.scheduler.Schedule(m.Audio)
		case gemini.InterruptedMessage:
			s.scheduler.Flush()
		case gemini.ToolCallMessage:
			s.handleToolCalls(transport, m.Calls)
		case gemini.DecodeErrorMessage:
			s.log.Warn("malformed server payload dropped", zap.Error(m.Err))
		}
	}

	s.mu.Lock()
	intentional := s.intentional
	s.transport = nil
	s.mu.Unlock()

	if intentional {
		s.teardown(StatusDisconnected)
		return
	}
	if err := transport.Err(); err != nil {
		classified := core.ClassifyRemote(err)
		s.callbacks.OnError(classified.Message)
		s.teardown(StatusError)
		return
	}
	s.teardown(StatusDisconnected)
}

// handleToolCalls executes the assistant's function calls. Unknown names
// and invalid arguments are logged no-ops; the turn is never failed over
// them.
func (s *Session) handleToolCalls(transport Transport, calls []gemini.FunctionCall) {
	s.playCue(audio.ProcessTone(s.cfg.ReceiveSampleRate))

	for _, fc := range calls {
		switch fc.Name {
		case toolAddTransaction:
			tx, err := parseTransactionArgs(fc.Args)
			if err != nil {
				s.log.Warn("ignoring bad addTransaction call", zap.Error(err))
				continue
			}
			tx.ID = uuid.NewString()
			s.playCue(audio.SuccessTone(s.cfg.ReceiveSampleRate))
			s.callbacks.OnTransactionAdded(tx)
			s.ack(transport, fc)
		case toolNavigate:
			view, err := parseNavigateArgs(fc.Args)
			if err != nil {
				s.log.Warn("ignoring bad navigate call", zap.Error(err))
				continue
			}
			s.callbacks.OnNavigate(view)
			s.ack(transport, fc)
		case toolCloseSession:
			// Teardown first so the assistant cannot speak past the
			// goodbye; no ack is sent on a closing connection.
			s.Disconnect()
			s.callbacks.OnLogout()
			return
		default:
			s.log.Warn("ignoring unknown tool call", zap.String("name", fc.Name))
		}
	}
}

func (s *Session) ack(transport Transport, fc gemini.FunctionCall) {
	if err := transport.SendToolAck(fc.ID, fc.Name, map[string]any{"result": "OK"}); err != nil {
		s.log.Debug("tool ack failed", zap.String("name", fc.Name), zap.Error(err))
	}
}

func (s *Session) playCue(samples []float32) {
	s.scheduler.Schedule(&audio.Buffer{
		SampleRate: s.cfg.ReceiveSampleRate,
		Data:       [][]float32{samples},
	})
}

// Disconnect ends the session. The devices are suspended, not released, so
// the next Connect reuses them. Safe to call repeatedly and in any state;
// from the error state it lands the session back at disconnected.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.status == StatusDisconnected {
		s.mu.Unlock()
		return
	}
	s.intentional = true
	transport := s.transport
	s.mu.Unlock()

	if transport != nil {
		// receiveLoop observes the close and finishes the teardown.
		_ = transport.Close()
		return
	}
	s.teardown(StatusDisconnected)
}

func (s *Session) teardown(final Status) {
	s.meter.Stop()
	s.scheduler.Reset()
	_ = s.capture.Suspend()
	_ = s.render.Suspend()
	s.setStatus(final)
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	if s.status == status {
		s.mu.Unlock()
		return
	}
	s.status = status
	s.mu.Unlock()
	s.callbacks.OnStatusChange(status)
}
