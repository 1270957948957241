package device

import (
	"sync"

	"github.com/gen2brain/malgo"
	"go.uber.org/zap"

	"github.com/finanvoice/voz/pkg/core/audio"
)

// Microphone captures mono 16-bit PCM and delivers it to the session as
// float32 frames. Start opens the device; Suspend and Resume toggle it
// without releasing the handle.
type Microphone struct {
	ctx        malgo.Context
	sampleRate int
	log        *zap.Logger

	mu     sync.Mutex
	device *malgo.Device
}

func newMicrophone(ctx malgo.Context, sampleRate int, log *zap.Logger) *Microphone {
	return &Microphone{ctx: ctx, sampleRate: sampleRate, log: log}
}

// Start opens the capture device and begins delivering frames to onFrame
// from the device thread. Failures are classified into typed errors.
func (m *Microphone) Start(onFrame func(samples []float32)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device != nil {
		return nil
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(m.sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			buf, err := audio.Decode(input, m.sampleRate, 1)
			if err != nil {
				m.log.Warn("dropping malformed capture frame", zap.Error(err))
				return
			}
			onFrame(buf.Mono())
		},
	}

	device, err := malgo.InitDevice(m.ctx, deviceConfig, callbacks)
	if err != nil {
		return ClassifyMicError(err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return ClassifyMicError(err)
	}
	m.device = device
	return nil
}

// Suspend pauses capture, keeping the device open.
func (m *Microphone) Suspend() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil || !m.device.IsStarted() {
		return nil
	}
	return m.device.Stop()
}

// Resume restarts a suspended device.
func (m *Microphone) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil || m.device.IsStarted() {
		return nil
	}
	if err := m.device.Start(); err != nil {
		return ClassifyMicError(err)
	}
	return nil
}

func (m *Microphone) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.device == nil {
		return
	}
	_ = m.device.Stop()
	m.device.Uninit()
	m.device = nil
}
