// Package queuesubscribe provides the transport that drains the relay queue
// and hands each message to the writer endpoint.
//
// This is analogous to the tcp package for the reader side.
package queuesubscribe

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"

	"github.com/rwool/linerelay/pkg/service/queue"
)

// Config contains the configuration for the relay writer.
type Config struct {
	// Endpoint is called with every queue.Message popped from Queue.
	Endpoint endpoint.Endpoint
	Queue    queue.Queue
	Log      log.Logger
}

// MakeWriterHandler returns a function that pops messages from the queue
// and passes them to the endpoint one at a time, in queue order.
//
// The function returns once the queue is closed. Failures for a single
// message are logged and do not stop the loop.
func MakeWriterHandler(conf Config) func(context.Context) {
	return func(ctx context.Context) {
		_ = conf.Log.Log("LEVEL", "INFO", "MESSAGE", "Beginning relay writer")

		var delivered int64
		for {
			msg, ok := conf.Queue.Pop()
			if !ok {
				_ = conf.Log.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Queue closed, relay writer stopping after %d messages", delivered))
				return
			}
			if deliver(ctx, msg, conf) {
				delivered++
			}
		}
	}
}

func deliver(ctx context.Context, msg queue.Message, conf Config) bool {
	resp, err := conf.Endpoint(ctx, msg)
	if err != nil {
		_ = conf.Log.Log("LEVEL", "ERROR", "MESSAGE", err.Error())
		return false
	}
	if v, ok := resp.(endpoint.Failer); ok && v.Failed() != nil {
		// The connection went away or could not be written to. Only that
		// message is lost.
		_ = conf.Log.Log("LEVEL", "WARN", "CONN", msg.ConnID.String(), "MESSAGE", v.Failed().Error())
		return false
	}
	_ = conf.Log.Log("LEVEL", "DEBUG", "CONN", msg.ConnID.String(), "MESSAGE", fmt.Sprintf("Echoed %d bytes", len(msg.Payload)))
	return true
}
