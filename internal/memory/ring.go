package memory

// Ring is a fixed-capacity FIFO buffer. Pushing onto a full ring evicts the oldest item.
// It is not safe for concurrent use; State guards its ring.
type Ring[T any] struct {
	buf   []T
	start int
	n     int
}

// NewRing creates a ring holding at most capacity items. Capacity below 1 is treated as 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest item when full.
func (r *Ring[T]) Push(v T) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Len returns the number of stored items.
func (r *Ring[T]) Len() int { return r.n }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Items returns a copy of the stored items, oldest first.
func (r *Ring[T]) Items() []T {
	return r.Last(r.n)
}

// Last returns a copy of the newest k items, oldest first.
func (r *Ring[T]) Last(k int) []T {
	if k > r.n {
		k = r.n
	}
	if k <= 0 {
		return nil
	}
	out := make([]T, k)
	first := r.n - k
	for i := range k {
		out[i] = r.buf[(r.start+first+i)%len(r.buf)]
	}
	return out
}
