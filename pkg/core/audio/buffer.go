package audio

import "sync"

// Ring is a fixed-capacity sample tap. Writers push the most recent audio
// into it from the capture and playback paths; the level meter reads the
// last window on each tick. Older samples are discarded once capacity is
// exceeded, so a reader always sees the freshest audio.
type Ring struct {
	mu   sync.Mutex
	data []float32
	max  int
}

// NewRing creates a tap holding up to max samples.
func NewRing(max int) *Ring {
	return &Ring{data: make([]float32, 0, max), max: max}
}

// Write appends samples, discarding the oldest if capacity is exceeded.
func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data = append(r.data, samples...)
	if len(r.data) > r.max {
		excess := len(r.data) - r.max
		r.data = append(r.data[:0], r.data[excess:]...)
	}
}

// ReadLast returns a copy of the last n samples, zero-padded at the front
// when fewer than n have been written.
func (r *Ring) ReadLast(n int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float32, n)
	have := len(r.data)
	if have > n {
		have = n
	}
	copy(out[n-have:], r.data[len(r.data)-have:])
	return out
}

// Len returns the number of buffered samples.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// Reset discards all buffered samples.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = r.data[:0]
}
