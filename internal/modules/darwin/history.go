package darwin

// Ring is a fixed-capacity append-only buffer; once full, the oldest entry
// is evicted. Used for both tier transitions and safety triggers.
type Ring[T any] struct {
	items []T
	cap   int
	start int
}

// NewRing creates a ring with the given capacity (minimum 1)
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{
		items: make([]T, 0, capacity),
		cap:   capacity,
	}
}

// Push appends an item, evicting the oldest when at capacity
func (r *Ring[T]) Push(item T) {
	if len(r.items) < r.cap {
		r.items = append(r.items, item)
		return
	}
	r.items[r.start] = item
	r.start = (r.start + 1) % r.cap
}

// PushAll appends items in order
func (r *Ring[T]) PushAll(items []T) {
	for _, item := range items {
		r.Push(item)
	}
}

// Len returns the number of stored items
func (r *Ring[T]) Len() int {
	return len(r.items)
}

// Items returns the contents oldest-first as a fresh slice
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, len(r.items))
	out = append(out, r.items[r.start:]...)
	out = append(out, r.items[:r.start]...)
	return out
}

// Reset clears the buffer
func (r *Ring[T]) Reset() {
	r.items = r.items[:0]
	r.start = 0
}
