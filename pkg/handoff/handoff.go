// Package handoff implements a bounded FIFO queue that hands items from many
// producers to consumers, blocking producers while the queue is full and
// consumers while it is empty.
//
// Blocked callers are parked on per-side FIFO wait lists. A successful
// transfer resumes at most one waiter from the opposite side, oldest first,
// and completes the transfer on its behalf, so a resumed caller never has to
// compete again for the slot it was woken for.
package handoff

import (
	"sync"
)

// Option configures a Queue.
type Option func(*options)

type options struct {
	drain bool
}

// WithDrain makes Pop keep returning buffered items after Close until the
// queue is empty. Without it, items still buffered when Close is called are
// discarded and Pop reports closed immediately.
func WithDrain() Option {
	return func(o *options) {
		o.drain = true
	}
}

// Queue is a bounded FIFO handoff queue. The zero value is not usable; use
// New.
type Queue[T any] struct {
	mu       sync.Mutex
	items    ring[T]
	closed   bool
	drain    bool
	capacity int

	producers waitList[T]
	consumers waitList[T]

	totalPushed int64
	totalPopped int64
	dropped     int64
}

// New returns a Queue holding at most capacity items. A capacity below 1 is
// treated as 1.
func New[T any](capacity int, opts ...Option) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Queue[T]{
		items:    newRing[T](capacity),
		drain:    o.drain,
		capacity: capacity,
	}
}

// Push adds item to the tail of the queue, blocking while the queue is full.
//
// It returns false without enqueuing if the queue is closed, either before
// the call or while the caller was blocked.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	if q.closed {
		q.dropped++
		q.mu.Unlock()
		return false
	}

	// Consumers only wait on an empty queue, so the item goes straight to
	// the oldest of them.
	if c := q.consumers.pop(); c != nil {
		q.totalPushed++
		q.totalPopped++
		c.resume(item, true)
		q.mu.Unlock()
		return true
	}

	if q.items.len() < q.capacity {
		q.items.push(item)
		q.totalPushed++
		q.mu.Unlock()
		return true
	}

	w := newWaiter(item)
	q.producers.push(w)
	q.mu.Unlock()

	<-w.ready
	return w.ok
}

// Pop removes and returns the item at the head of the queue, blocking while
// the queue is empty.
//
// The boolean is false once the queue is closed; the returned item is then
// the zero value. Unless the queue was created WithDrain, this happens
// immediately after Close even if items are still buffered.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	if q.items.len() > 0 && (!q.closed || q.drain) {
		item := q.items.pop()
		q.totalPopped++
		q.admitProducerLocked()
		q.mu.Unlock()
		return item, true
	}
	if q.closed {
		q.mu.Unlock()
		var zero T
		return zero, false
	}

	var zero T
	w := newWaiter(zero)
	q.consumers.push(w)
	q.mu.Unlock()

	<-w.ready
	return w.item, w.ok
}

// admitProducerLocked moves the oldest blocked producer's item into the slot
// a Pop just freed.
func (q *Queue[T]) admitProducerLocked() {
	if q.closed {
		return
	}
	p := q.producers.pop()
	if p == nil {
		return
	}
	q.items.push(p.item)
	q.totalPushed++
	var zero T
	p.resume(zero, true)
}

// Close closes the queue and resumes every blocked Push and Pop. It is safe
// to call more than once.
//
// Blocked producers return false without enqueuing. Blocked consumers can
// only exist while the queue is empty, so they all report closed.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true

	var zero T
	for p := q.producers.pop(); p != nil; p = q.producers.pop() {
		q.dropped++
		p.resume(zero, false)
	}
	for c := q.consumers.pop(); c != nil; c = q.consumers.pop() {
		c.resume(zero, false)
	}
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len()
}

// Cap returns the capacity of the queue.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Stats contains a snapshot of the queue state.
type Stats struct {
	Count            int
	Capacity         int
	PendingProducers int
	PendingConsumers int
	TotalPushed      int64
	TotalPopped      int64
	Dropped          int64
	Closed           bool
}

// Stats returns a snapshot of the queue state.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Count:            q.items.len(),
		Capacity:         q.capacity,
		PendingProducers: q.producers.len(),
		PendingConsumers: q.consumers.len(),
		TotalPushed:      q.totalPushed,
		TotalPopped:      q.totalPopped,
		Dropped:          q.dropped,
		Closed:           q.closed,
	}
}
