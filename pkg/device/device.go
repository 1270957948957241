// Package device binds the voice session to real audio hardware: a malgo
// capture device for the microphone and an oto player for the speaker.
package device

import (
	"fmt"
	"strings"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"
	"go.uber.org/zap"

	"github.com/finanvoice/voz/pkg/core"
)

// Config holds the hardware sample rates.
type Config struct {
	CaptureSampleRate  int
	PlaybackSampleRate int
}

// User-facing microphone failure messages.
const (
	MsgMicDenied   = "Microphone access denied. Allow microphone access in your system settings."
	MsgMicNotFound = "No microphone found."
)

// Devices owns the audio contexts. Open them once per process: the oto
// context cannot be re-created, and keeping both alive lets sessions
// suspend and resume without device churn.
type Devices struct {
	malgoCtx *malgo.AllocatedContext
	mic      *Microphone
	speaker  *Speaker
}

// Open initializes both audio contexts and the device wrappers.
func Open(cfg Config, log *zap.Logger) (*Devices, error) {
	if log == nil {
		log = zap.NewNop()
	}

	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime
	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		return nil, core.NewDeviceError(fmt.Sprintf("audio context init failed: %v", err))
	}

	// At 24kHz mono 16-bit, 4800 bytes is ~100ms: low latency without
	// glitching.
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.PlaybackSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   4800,
	})
	if err != nil {
		_ = malgoCtx.Uninit()
		return nil, core.NewDeviceError(fmt.Sprintf("speaker init failed: %v", err))
	}
	<-ready

	return &Devices{
		malgoCtx: malgoCtx,
		mic:      newMicrophone(malgoCtx.Context, cfg.CaptureSampleRate, log),
		speaker:  newSpeaker(otoCtx, log),
	}, nil
}

// Microphone returns the capture device.
func (d *Devices) Microphone() *Microphone { return d.mic }

// Speaker returns the playback device.
func (d *Devices) Speaker() *Speaker { return d.speaker }

// Close releases the hardware.
func (d *Devices) Close() error {
	d.mic.close()
	d.speaker.close()
	if err := d.malgoCtx.Uninit(); err != nil {
		return core.NewDeviceError(fmt.Sprintf("audio context uninit failed: %v", err))
	}
	return nil
}

// ClassifyMicError maps a capture init failure onto a typed error with a
// user-facing message.
func ClassifyMicError(err error) *core.Error {
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "access denied") || strings.Contains(text, "permission"):
		return core.NewPermissionError(MsgMicDenied)
	case strings.Contains(text, "no device") || strings.Contains(text, "device not found") || strings.Contains(text, "no backend"):
		return core.NewDeviceError(MsgMicNotFound)
	default:
		return core.NewDeviceError(fmt.Sprintf("microphone error: %v", err))
	}
}
