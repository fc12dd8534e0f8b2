// Package countermock provides a counter.Counter for tests.
package countermock

import (
	"context"
	"sync"
)

// CounterMock is a mock implementation of the counter.Counter type.
//
// Intended for testing only.
type CounterMock struct {
	// Err, if set, is returned by every call and no counter is changed.
	Err error

	mu     sync.Mutex
	values map[string]int64
	calls  int
}

// New returns a new CounterMock.
func New() *CounterMock {
	return &CounterMock{values: make(map[string]int64)}
}

// NewFailing returns a CounterMock whose calls all fail with err.
func NewFailing(err error) *CounterMock {
	c := New()
	c.Err = err
	return c
}

// SetCounter sets the value of the counter for key.
func (c *CounterMock) SetCounter(ctx context.Context, key string, value int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.Err != nil {
		return c.Err
	}
	c.values[key] = value
	return nil
}

// GetCounter gets the current value of the counter for key.
func (c *CounterMock) GetCounter(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.Err != nil {
		return 0, c.Err
	}
	return c.values[key], nil
}

// IncrementCounter increments the value of the counter for key.
func (c *CounterMock) IncrementCounter(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.Err != nil {
		return c.Err
	}
	c.values[key]++
	return nil
}

// Value returns the current value for key without counting as a call.
func (c *CounterMock) Value(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key]
}

// Calls returns how many counter operations were attempted.
func (c *CounterMock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
