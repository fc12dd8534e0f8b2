// Package counter implements support for named counters used to publish
// relay statistics.
package counter

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Keys of the counters maintained by the relay.
const (
	KeyConnections = "relay:connections"
	KeyReceived    = "relay:received"
	KeyEchoed      = "relay:echoed"
	KeyDropped     = "relay:dropped"
)

// Keys returns the keys of every counter maintained by the relay.
func Keys() []string {
	return []string{KeyConnections, KeyReceived, KeyEchoed, KeyDropped}
}

// Reset sets every relay counter in c to 0 so the counters describe a single
// run of the relay.
func Reset(ctx context.Context, c Counter) error {
	for _, key := range Keys() {
		if err := c.SetCounter(ctx, key, 0); err != nil {
			return errors.Wrap(err, "unable to reset relay counters")
		}
	}
	return nil
}

// Counter wraps the set of methods for maintaining counters identified by a
// given key.
type Counter interface {
	SetCounter(ctx context.Context, key string, value int64) error
	GetCounter(ctx context.Context, key string) (int64, error)
	IncrementCounter(ctx context.Context, key string) error
}

// Ensure Memory implements the Counter interface.
var _ Counter = (*Memory)(nil)

// Memory keeps counters in process memory. It is used when no external store
// is configured. The zero value is ready to use.
type Memory struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// SetCounter sets the counter with the given key to value.
func (m *Memory) SetCounter(_ context.Context, key string, value int64) error {
	if len(key) == 0 {
		return errors.New("invalid key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	m.values[key] = value
	return nil
}

// GetCounter gets the current value of a counter. Unknown keys read as 0.
func (m *Memory) GetCounter(_ context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, errors.New("invalid key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

// IncrementCounter increments the value with the given key.
func (m *Memory) IncrementCounter(_ context.Context, key string) error {
	if len(key) == 0 {
		return errors.New("invalid key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	m.values[key]++
	return nil
}
