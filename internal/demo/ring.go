package demo

import "sync"

// Ring is a fixed-size circular buffer of raw log lines
type Ring struct {
	mu       sync.RWMutex
	lines    []string
	head     int // next write position
	count    int
	capacity int
}

// NewRing creates a ring holding at most capacity lines
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Ring{
		lines:    make([]string, capacity),
		capacity: capacity,
	}
}

// Write adds a line, overwriting the oldest when full
func (r *Ring) Write(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[r.head] = line
	r.head = (r.head + 1) % r.capacity
	if r.count < r.capacity {
		r.count++
	}
}

// Last returns the last n lines in write order. n <= 0 returns everything.
func (r *Ring) Last(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	if n <= 0 || n > r.count {
		n = r.count
	}

	// Oldest of the last n sits n slots behind head
	start := (r.head - n + r.capacity) % r.capacity
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = r.lines[(start+i)%r.capacity]
	}
	return out
}

// Count returns the number of lines held
func (r *Ring) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Capacity returns the maximum number of lines held
func (r *Ring) Capacity() int {
	return r.capacity
}

// Clear drops every line
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
}
