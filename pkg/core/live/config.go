package live

import "time"

// Config holds all tuning for a live session.
type Config struct {
	// APIKey authenticates against the realtime endpoint. Checked before
	// any device or network side effect.
	APIKey string `json:"api_key"`

	// Model is the realtime audio model.
	Model string `json:"model"`

	// Voice is the prebuilt synthesis voice name.
	Voice string `json:"voice"`

	// Endpoint overrides the realtime websocket URL. Empty uses the
	// production endpoint.
	Endpoint string `json:"endpoint,omitempty"`

	// SystemInstruction is prepended with the financial context at
	// connect time.
	SystemInstruction string `json:"system_instruction,omitempty"`

	// CaptureSampleRate is the microphone rate in Hz.
	CaptureSampleRate int `json:"capture_sample_rate"`

	// SendSampleRate is the rate audio is resampled to before upload.
	SendSampleRate int `json:"send_sample_rate"`

	// ReceiveSampleRate is the rate of inbound assistant speech.
	ReceiveSampleRate int `json:"receive_sample_rate"`

	// BargeInThreshold is the RMS energy above which a captured frame
	// counts as user speech and flushes pending playback.
	BargeInThreshold float64 `json:"barge_in_threshold"`

	// OutputLevelFloor decides meter attribution: output above the floor
	// reports the assistant, otherwise the user.
	OutputLevelFloor float64 `json:"output_level_floor"`

	// AIMeterGain and UserMeterGain scale reported meter levels.
	AIMeterGain   float64 `json:"ai_meter_gain"`
	UserMeterGain float64 `json:"user_meter_gain"`

	// MeterInterval is the level-meter tick period.
	MeterInterval time.Duration `json:"meter_interval"`

	// LatencyEpsilon pads the playback cursor when scheduling against a
	// drained pipeline, and is the slack re-added after a flush.
	LatencyEpsilon time.Duration `json:"latency_epsilon"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Model:             "gemini-2.5-flash-native-audio-preview-09-2025",
		Voice:             "Kore",
		CaptureSampleRate: 48000,
		SendSampleRate:    16000,
		ReceiveSampleRate: 24000,
		BargeInThreshold:  0.15,
		OutputLevelFloor:  0.01,
		AIMeterGain:       3.0,
		UserMeterGain:     2.5,
		MeterInterval:     50 * time.Millisecond,
		LatencyEpsilon:    50 * time.Millisecond,
	}
}
