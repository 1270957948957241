package live

import (
	"sync"
	"testing"
	"time"

	"github.com/finanvoice/voz/pkg/core/audio"
)

type fakeSink struct {
	mu      sync.Mutex
	writes  [][]float32
	flushes int
}

func (f *fakeSink) Write(samples []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, samples)
	return nil
}

func (f *fakeSink) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func (f *fakeSink) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeSink) flushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

// testScheduler pins the clock and captures timers so tests control when
// chunks fire.
func testScheduler(sink Sink, epsilon time.Duration) (*Scheduler, *time.Time, *[]scheduledTimer) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	clock := &now
	var timers []scheduledTimer
	s := NewScheduler(sink, epsilon, nil)
	s.now = func() time.Time { return *clock }
	s.afterFunc = func(d time.Duration, fn func()) *time.Timer {
		timers = append(timers, scheduledTimer{delay: d, fire: fn})
		return time.NewTimer(time.Hour)
	}
	return s, clock, &timers
}

type scheduledTimer struct {
	delay time.Duration
	fire  func()
}

// chunk builds a buffer of the given duration at 1 kHz.
func chunk(ms int) *audio.Buffer {
	return &audio.Buffer{SampleRate: 1000, Data: [][]float32{make([]float32, ms)}}
}

func TestSchedulerGaplessCursor(t *testing.T) {
	sink := &fakeSink{}
	s, _, timers := testScheduler(sink, 50*time.Millisecond)

	s.Schedule(chunk(100))
	s.Schedule(chunk(200))
	s.Schedule(chunk(100))

	got := []time.Duration{(*timers)[0].delay, (*timers)[1].delay, (*timers)[2].delay}
	want := []time.Duration{50 * time.Millisecond, 150 * time.Millisecond, 350 * time.Millisecond}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d starts after %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSchedulerSnapsWhenDrained(t *testing.T) {
	sink := &fakeSink{}
	s, clock, timers := testScheduler(sink, 50*time.Millisecond)

	s.Schedule(chunk(100))
	// The pipeline drains: the clock passes the cursor.
	*clock = clock.Add(time.Second)
	s.Schedule(chunk(100))

	if got := (*timers)[1].delay; got != 50*time.Millisecond {
		t.Errorf("drained chunk starts after %v, want the epsilon snap", got)
	}
}

func TestSchedulerDeliversToSink(t *testing.T) {
	sink := &fakeSink{}
	s, _, timers := testScheduler(sink, 50*time.Millisecond)

	s.Schedule(chunk(100))
	if s.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", s.Pending())
	}
	(*timers)[0].fire()
	if sink.writeCount() != 1 {
		t.Fatalf("sink got %d writes, want 1", sink.writeCount())
	}
	// The chunk is audible until its playback window ends.
	if s.Pending() != 1 {
		t.Errorf("Pending while audible = %d, want 1", s.Pending())
	}
	if got := (*timers)[1].delay; got != 100*time.Millisecond {
		t.Errorf("playback window = %v, want the chunk duration", got)
	}
	(*timers)[1].fire()
	if s.Pending() != 0 {
		t.Errorf("Pending after playback end = %d, want 0", s.Pending())
	}
}

func TestSchedulerFlushCancelsAudibleChunk(t *testing.T) {
	sink := &fakeSink{}
	s, _, timers := testScheduler(sink, 50*time.Millisecond)

	s.Schedule(chunk(100))
	(*timers)[0].fire()
	if s.Pending() != 1 {
		t.Fatalf("Pending while audible = %d, want 1", s.Pending())
	}

	s.Flush()
	if s.Pending() != 0 {
		t.Errorf("Pending after flush = %d, want 0", s.Pending())
	}
	if sink.flushCount() != 1 {
		t.Errorf("sink flushes = %d, want 1", sink.flushCount())
	}
	// The orphaned playback-end timer is a no-op.
	(*timers)[1].fire()
	if s.Pending() != 0 {
		t.Errorf("Pending after stale completion = %d, want 0", s.Pending())
	}
}

func TestSchedulerFlushCancelsPending(t *testing.T) {
	sink := &fakeSink{}
	s, _, timers := testScheduler(sink, 50*time.Millisecond)

	s.Schedule(chunk(100))
	s.Schedule(chunk(100))
	s.Flush()

	if sink.flushCount() != 1 {
		t.Errorf("sink flushes = %d, want 1", sink.flushCount())
	}
	if s.Pending() != 0 {
		t.Errorf("Pending after flush = %d, want 0", s.Pending())
	}
	// Timers that fire after the flush must not reach the sink.
	(*timers)[0].fire()
	(*timers)[1].fire()
	if sink.writeCount() != 0 {
		t.Errorf("cancelled chunks still wrote: %d", sink.writeCount())
	}
}

func TestSchedulerFlushResetsCursor(t *testing.T) {
	sink := &fakeSink{}
	s, _, timers := testScheduler(sink, 50*time.Millisecond)

	s.Schedule(chunk(500))
	s.Flush()
	s.Schedule(chunk(100))

	// The post-flush chunk starts from the fresh cursor, not after the
	// cancelled 500ms chunk.
	if got := (*timers)[1].delay; got != 50*time.Millisecond {
		t.Errorf("post-flush chunk starts after %v, want 50ms", got)
	}
}

func TestSchedulerResetZeroesCursor(t *testing.T) {
	sink := &fakeSink{}
	s, _, timers := testScheduler(sink, 50*time.Millisecond)

	s.Schedule(chunk(500))
	s.Reset()

	if s.Pending() != 0 {
		t.Errorf("Pending after Reset = %d, want 0", s.Pending())
	}
	if sink.flushCount() != 0 {
		t.Errorf("Reset should not flush the sink, got %d", sink.flushCount())
	}
	// A fresh session schedules from the snap again.
	s.Schedule(chunk(100))
	if got := (*timers)[1].delay; got != 50*time.Millisecond {
		t.Errorf("post-reset chunk starts after %v, want 50ms", got)
	}
}
