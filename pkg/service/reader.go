// Package service implements the business logic for the line relay.
package service

import (
	"context"
	"io"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rwool/linerelay/pkg/service/counter"
	"github.com/rwool/linerelay/pkg/service/queue"
)

// ErrShuttingDown is returned when a message is submitted after the relay
// began shutting down. The message is dropped.
var ErrShuttingDown = errors.New("relay is shutting down")

// ReaderService is the service used by connection readers.
type ReaderService interface {
	// Connect registers a new connection and returns its ID.
	Connect(ctx context.Context, conn io.WriteCloser) uuid.UUID
	// Submit queues a message to be echoed, blocking while the queue is
	// full.
	Submit(ctx context.Context, msg queue.Message) error
	// Disconnect closes and unregisters a connection.
	Disconnect(ctx context.Context, id uuid.UUID)
}

// ReaderServiceConfig contains the dependencies of a ReaderService.
type ReaderServiceConfig struct {
	Queue    queue.Queue
	Registry *Registry
	Counter  counter.Counter
	Log      log.Logger
}

// NewReaderService returns a ReaderService.
func NewReaderService(conf ReaderServiceConfig) ReaderService {
	return newReaderService(conf)
}

func newReaderService(conf ReaderServiceConfig) *readerService {
	return &readerService{
		q:        conf.Queue,
		registry: conf.Registry,
		counter:  conf.Counter,
		log:      conf.Log,
	}
}

type readerService struct {
	q        queue.Queue
	registry *Registry
	counter  counter.Counter
	log      log.Logger
}

func (r *readerService) Connect(ctx context.Context, conn io.WriteCloser) uuid.UUID {
	id := r.registry.Register(conn)
	incrementCounter(ctx, r.counter, r.log, counter.KeyConnections)
	return id
}

func (r *readerService) Submit(ctx context.Context, msg queue.Message) error {
	if !r.q.Push(msg) {
		incrementCounter(ctx, r.counter, r.log, counter.KeyDropped)
		return errors.WithStack(ErrShuttingDown)
	}
	incrementCounter(ctx, r.counter, r.log, counter.KeyReceived)
	return nil
}

func (r *readerService) Disconnect(_ context.Context, id uuid.UUID) {
	if err := r.registry.Remove(id); err != nil {
		_ = r.log.Log("LEVEL", "DEBUG", "MESSAGE", err.Error())
	}
}

// incrementCounter bumps a statistics counter. Statistics are non-essential,
// so failures are only logged.
func incrementCounter(ctx context.Context, c counter.Counter, l log.Logger, key string) {
	if c == nil {
		return
	}
	if err := c.IncrementCounter(ctx, key); err != nil {
		_ = l.Log("LEVEL", "WARN", "MESSAGE", err.Error())
	}
}
