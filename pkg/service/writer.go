package service

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/rwool/linerelay/pkg/service/counter"
	"github.com/rwool/linerelay/pkg/service/queue"
)

// ErrUnknownConnection is returned when a message refers to a connection
// that is no longer registered. The message is dropped.
var ErrUnknownConnection = errors.New("unknown connection")

// WriterService wraps the set of methods for the relay writer.
type WriterService interface {
	Echo(ctx context.Context, msg queue.Message) (EchoReport, error)
}

// EchoReport describes a delivered message.
type EchoReport struct {
	ConnID string
	Bytes  int
}

// WriterServiceConfig contains the dependencies of a WriterService.
type WriterServiceConfig struct {
	Registry *Registry
	Counter  counter.Counter
	Log      log.Logger
}

// NewWriterService returns a WriterService.
func NewWriterService(conf WriterServiceConfig) WriterService {
	return newWriterService(conf)
}

func newWriterService(conf WriterServiceConfig) *writerService {
	return &writerService{
		registry: conf.Registry,
		counter:  conf.Counter,
		log:      conf.Log,
	}
}

type writerService struct {
	registry *Registry
	counter  counter.Counter
	log      log.Logger
}

// Echo writes the message payload, delimiter included, back to the
// connection it came from.
//
// A failed write only affects that connection, which is closed and
// unregistered.
func (w *writerService) Echo(ctx context.Context, msg queue.Message) (EchoReport, error) {
	conn, ok := w.registry.Lookup(msg.ConnID)
	if !ok {
		return EchoReport{}, errors.Wrapf(ErrUnknownConnection, "connection %s", msg.ConnID)
	}

	n, err := conn.Write(msg.Payload)
	if err != nil {
		if rErr := w.registry.Remove(msg.ConnID); rErr != nil {
			_ = w.log.Log("LEVEL", "DEBUG", "MESSAGE", rErr.Error())
		}
		return EchoReport{}, errors.Wrapf(err, "unable to write to connection %s", msg.ConnID)
	}

	incrementCounter(ctx, w.counter, w.log, counter.KeyEchoed)
	return EchoReport{
		ConnID: msg.ConnID.String(),
		Bytes:  n,
	}, nil
}
