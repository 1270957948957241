package device

import (
	"sync"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"

	"github.com/finanvoice/voz/pkg/core/audio"
)

// Speaker plays float32 samples through oto. The player pulls from an
// internal byte buffer via Read; Flush drops both our buffer and the
// player's so interrupted speech stops immediately.
type Speaker struct {
	otoCtx *oto.Context
	log    *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	buf     []byte
	player  *oto.Player
	playing bool
	closed  bool
}

func newSpeaker(ctx *oto.Context, log *zap.Logger) *Speaker {
	s := &Speaker{otoCtx: ctx, log: log}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Write queues samples for playback, starting the player on first use.
func (s *Speaker) Write(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	s.buf = append(s.buf, audio.EncodeSamples(samples)...)
	if !s.playing {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
	s.cond.Signal()
	return nil
}

// Read implements io.Reader for the oto player's pull loop.
func (s *Speaker) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed && len(s.buf) == 0 {
		// Silence lets oto drain gracefully.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Flush discards queued audio and resets the player so nothing already
// buffered downstream keeps playing.
func (s *Speaker) Flush() error {
	s.mu.Lock()
	s.buf = s.buf[:0]
	if s.player == nil || !s.playing {
		s.mu.Unlock()
		return nil
	}
	s.playing = false
	player := s.player
	s.player = nil
	s.mu.Unlock()

	// Pause stops output now; Reset clears oto's internal buffer so old
	// audio cannot overlap the next chunk.
	player.Pause()
	_ = player.Reset()
	_ = player.Close()
	return nil
}

// Suspend pauses the player, keeping it for Resume.
func (s *Speaker) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil && s.playing {
		s.player.Pause()
	}
	return nil
}

// Resume continues playback after a Suspend.
func (s *Speaker) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil && s.playing {
		s.player.Play()
	}
	return nil
}

func (s *Speaker) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		_ = player.Close()
	}
}
