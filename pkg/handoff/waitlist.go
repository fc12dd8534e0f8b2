package handoff

// waiter is a single blocked Push or Pop. ready is closed exactly once, by
// resume, after item and ok have been set.
type waiter[T any] struct {
	item  T
	ok    bool
	ready chan struct{}
}

func newWaiter[T any](item T) *waiter[T] {
	return &waiter[T]{item: item, ready: make(chan struct{})}
}

func (w *waiter[T]) resume(item T, ok bool) {
	w.item = item
	w.ok = ok
	close(w.ready)
}

// waitList is a FIFO of blocked callers, resumed in arrival order.
type waitList[T any] struct {
	waiters []*waiter[T]
	head    int
}

func (l *waitList[T]) len() int {
	return len(l.waiters) - l.head
}

func (l *waitList[T]) push(w *waiter[T]) {
	l.waiters = append(l.waiters, w)
}

// pop removes and returns the oldest waiter, or nil if there is none.
func (l *waitList[T]) pop() *waiter[T] {
	if l.head == len(l.waiters) {
		return nil
	}
	w := l.waiters[l.head]
	l.waiters[l.head] = nil
	l.head++
	l.compact()
	return w
}

func (l *waitList[T]) compact() {
	if l.head == len(l.waiters) {
		l.waiters = l.waiters[:0]
		l.head = 0
		return
	}
	if l.head < 64 || l.head*2 < len(l.waiters) {
		return
	}
	remaining := copy(l.waiters, l.waiters[l.head:])
	for i := remaining; i < len(l.waiters); i++ {
		l.waiters[i] = nil
	}
	l.waiters = l.waiters[:remaining]
	l.head = 0
}
