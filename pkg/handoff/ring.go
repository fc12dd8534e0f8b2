package handoff

// ring is a fixed-size FIFO of items. It never grows; callers keep len below
// the size it was created with.
type ring[T any] struct {
	buf   []T
	head  int // read position
	tail  int // write position
	count int
}

func newRing[T any](size int) ring[T] {
	return ring[T]{buf: make([]T, size)}
}

func (r *ring[T]) len() int {
	return r.count
}

func (r *ring[T]) push(item T) {
	r.buf[r.tail] = item
	r.tail = (r.tail + 1) % len(r.buf)
	r.count++
}

func (r *ring[T]) pop() T {
	item := r.buf[r.head]
	var zero T
	r.buf[r.head] = zero // Clear reference for GC
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return item
}
