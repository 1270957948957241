package live

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finanvoice/voz/pkg/core/audio"
)

// Sink is where scheduled audio lands. Write hands samples to the output
// device; Flush drops whatever the device has buffered but not yet played.
type Sink interface {
	Write(samples []float32) error
	Flush() error
}

// Scheduler plays assistant speech gaplessly. It keeps a cursor at the end
// of the last scheduled chunk; each new chunk starts exactly there, so
// back-to-back network chunks play as one continuous stream. When the
// pipeline has drained (the cursor fell behind the clock) the cursor snaps
// to now plus a small epsilon instead of scheduling into the past.
type Scheduler struct {
	sink    Sink
	epsilon time.Duration
	log     *zap.Logger

	// Clock injection for tests.
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer

	mu     sync.Mutex
	next   time.Time
	active map[*scheduledChunk]struct{}
}

type scheduledChunk struct {
	timer   *time.Timer
	stopped bool
}

// NewScheduler creates a scheduler that writes into sink.
func NewScheduler(sink Sink, epsilon time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		sink:      sink,
		epsilon:   epsilon,
		log:       log,
		now:       time.Now,
		afterFunc: time.AfterFunc,
		active:    make(map[*scheduledChunk]struct{}),
	}
}

// Schedule queues a chunk to start when the previous one ends. The write
// into the sink happens on a timer goroutine at the chunk's start time.
func (s *Scheduler) Schedule(buf *audio.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.next.Before(now) {
		s.next = now.Add(s.epsilon)
	}
	start := s.next
	duration := buf.Duration()
	s.next = start.Add(duration)

	chunk := &scheduledChunk{}
	s.active[chunk] = struct{}{}
	samples := buf.Mono()
	chunk.timer = s.afterFunc(start.Sub(now), func() {
		s.deliver(chunk, samples, duration)
	})
}

func (s *Scheduler) deliver(chunk *scheduledChunk, samples []float32, duration time.Duration) {
	s.mu.Lock()
	if chunk.stopped {
		s.mu.Unlock()
		return
	}
	// The sink write is non-blocking, so the chunk stays in the active
	// set while it is audible. A second timer retires it when playback
	// ends; a flush in between cancels it and drops the device buffer.
	chunk.timer = s.afterFunc(duration, func() {
		s.complete(chunk)
	})
	s.mu.Unlock()

	if err := s.sink.Write(samples); err != nil {
		s.log.Warn("playback write failed", zap.Error(err))
	}
}

func (s *Scheduler) complete(chunk *scheduledChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chunk.stopped {
		return
	}
	delete(s.active, chunk)
}

// Flush cancels every pending chunk, drops buffered device audio, and
// resets the cursor to now plus epsilon. Chunks being scheduled
// concurrently either land before the flush and are cancelled, or after it
// and play from the fresh cursor.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()
	s.next = s.now().Add(s.epsilon)
	if err := s.sink.Flush(); err != nil {
		s.log.Warn("playback flush failed", zap.Error(err))
	}
}

// Reset cancels all pending chunks and zeroes the cursor. Used at
// teardown; the next session starts with a fresh cursor.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
	s.next = time.Time{}
}

func (s *Scheduler) cancelAllLocked() {
	for chunk := range s.active {
		chunk.stopped = true
		chunk.timer.Stop()
	}
	s.active = make(map[*scheduledChunk]struct{})
}

// Pending returns the number of chunks that are scheduled or still
// audible. A chunk leaves the count when its playback window ends, not
// when its samples are handed to the sink.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
