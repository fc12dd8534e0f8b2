package service

import (
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Registry maps connection IDs to the connections replies are written to.
//
// It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]io.WriteCloser
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]io.WriteCloser)}
}

// Register adds conn to the registry and returns the ID assigned to it.
func (r *Registry) Register(conn io.WriteCloser) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.conns[id] = conn
	r.mu.Unlock()
	return id
}

// Lookup returns the connection registered under id.
func (r *Registry) Lookup(id uuid.UUID) (io.WriteCloser, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	return c, ok
}

// Remove closes the connection registered under id and forgets it. Removing
// an unknown ID is a no-op.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	c, ok := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return errors.Wrapf(c.Close(), "unable to close connection %s", id)
}

// CloseAll closes and forgets every registered connection.
//
// Only the first error encountered will be returned, if there is one.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[uuid.UUID]io.WriteCloser)
	r.mu.Unlock()

	var err error
	for id, c := range conns {
		if e := c.Close(); e != nil && err == nil {
			err = errors.Wrapf(e, "unable to close connection %s", id)
		}
	}
	return err
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
