// Package audio provides the PCM codec, resampler, and level-analysis
// helpers used by the realtime voice pipeline. All wire audio is 16-bit
// signed little-endian mono PCM; in-memory audio is float32 in [-1, 1].
package audio

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Buffer holds decoded PCM as planar float32 channels at a known rate.
type Buffer struct {
	SampleRate int
	// Data is one slice per channel; all channels have equal length.
	Data [][]float32
}

// Frames returns the number of samples per channel.
func (b *Buffer) Frames() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Mono returns the first channel, which is the whole signal for the mono
// streams this pipeline carries.
func (b *Buffer) Mono() []float32 {
	if len(b.Data) == 0 {
		return nil
	}
	return b.Data[0]
}

// EncodeSamples converts float32 samples to 16-bit little-endian PCM bytes.
// Samples are clamped to [-1, 1]. Negative samples scale by 32768 and
// positive by 32767 so both rails map onto the full int16 range.
func EncodeSamples(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// EncodeBase64 encodes float32 samples as base64 16-bit LE PCM, the form the
// realtime endpoint accepts for media chunks.
func EncodeBase64(samples []float32) string {
	return base64.StdEncoding.EncodeToString(EncodeSamples(samples))
}

// Decode converts 16-bit little-endian PCM bytes into a Buffer. The byte
// length must be an exact multiple of 2*channels; a trailing partial frame
// means the chunk was truncated in transit and the whole chunk is rejected.
func Decode(data []byte, sampleRate, channels int) (*Buffer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("audio: invalid channel count %d", channels)
	}
	frameBytes := 2 * channels
	if len(data)%frameBytes != 0 {
		return nil, fmt.Errorf("audio: pcm length %d is not a multiple of frame size %d", len(data), frameBytes)
	}
	frames := len(data) / frameBytes
	buf := &Buffer{SampleRate: sampleRate, Data: make([][]float32, channels)}
	for c := range buf.Data {
		buf.Data[c] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		base := f * frameBytes
		for c := 0; c < channels; c++ {
			v := int16(data[base+c*2]) | int16(data[base+c*2+1])<<8
			buf.Data[c][f] = float32(v) / 32768.0
		}
	}
	return buf, nil
}

// DecodeBase64 decodes a base64 payload of 16-bit LE PCM into a Buffer.
func DecodeBase64(payload string, sampleRate, channels int) (*Buffer, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("audio: invalid base64 payload: %w", err)
	}
	return Decode(raw, sampleRate, channels)
}
