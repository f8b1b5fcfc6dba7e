package repository

import "sync"

// Ring is a bounded in-memory history. When full, the oldest entry is dropped.
// Readers get copies, so a snapshot never changes under them.
type Ring[T any] struct {
	mu    sync.RWMutex
	buf   []T
	start int
	size  int
}

// NewRing returns a ring holding at most capacity items (minimum 1).
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends items in order, evicting the oldest when full.
func (r *Ring[T]) Push(items ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		if r.size < len(r.buf) {
			r.buf[(r.start+r.size)%len(r.buf)] = it
			r.size++
			continue
		}
		r.buf[r.start] = it
		r.start = (r.start + 1) % len(r.buf)
	}
}

// Snapshot returns every item, oldest first.
func (r *Ring[T]) Snapshot() []T {
	return r.Last(-1)
}

// Last returns up to n most recent items, oldest first. n < 0 means all.
func (r *Ring[T]) Last(n int) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n < 0 || n > r.size {
		n = r.size
	}
	out := make([]T, n)
	skip := r.size - n
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.start+skip+i)%len(r.buf)]
	}
	return out
}

// Len is the number of stored items.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap is the maximum number of stored items.
func (r *Ring[T]) Cap() int { return len(r.buf) }
