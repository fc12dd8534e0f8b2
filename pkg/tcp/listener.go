// Package tcp provides the TCP transport of the relay: it accepts
// connections and turns the newline delimited lines read from them into
// Submit endpoint calls.
//
// This is analogous to the queuesubscribe package for the writer side.
package tcp

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rwool/linerelay/pkg/service"
	"github.com/rwool/linerelay/pkg/service/queue"
)

// DefaultMaxLineBytes is used when Config.MaxLineBytes is not set.
const DefaultMaxLineBytes = 64 * 1024

// Sessions wraps the methods for tracking open connections.
type Sessions interface {
	Connect(ctx context.Context, conn io.WriteCloser) uuid.UUID
	Disconnect(ctx context.Context, id uuid.UUID)
}

// Config contains the configuration for serving connections.
type Config struct {
	// Endpoint is called with a queue.Message for every line read.
	Endpoint endpoint.Endpoint
	Sessions Sessions
	Log      log.Logger
	// MaxLineBytes bounds a single line, delimiter included. A longer line
	// ends the connection.
	MaxLineBytes int
}

// MakeListenerHandler returns a function that accepts connections from a
// listener and reads lines from each of them.
//
// When ctx is done, the listener and every connection accepted from it are
// closed. The listener may also be closed by the caller to stop accepting
// early; accepted connections are then kept until ctx is done. In both cases
// the function returns nil once all connection readers have stopped.
func MakeListenerHandler(conf Config) func(context.Context, net.Listener) error {
	if conf.MaxLineBytes <= 0 {
		conf.MaxLineBytes = DefaultMaxLineBytes
	}

	return func(ctx context.Context, l net.Listener) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		var readers sync.WaitGroup

		go func() {
			<-ctx.Done()
			if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				_ = conf.Log.Log("LEVEL", "WARN", "MESSAGE", err.Error())
			}
		}()

		_ = conf.Log.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Listening on %s", l.Addr()))
		for {
			conn, err := l.Accept()
			if err == nil {
				readers.Add(1)
				go func() {
					defer readers.Done()
					serveConn(ctx, conn, conf)
				}()
				continue
			}

			// Check if the Accept was stopped from a context cancellation or
			// by the caller closing the listener.
			select {
			case <-ctx.Done():
				readers.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				readers.Wait()
				return nil
			}

			cancel()
			readers.Wait()
			return errors.Wrap(err, "unable to accept connection")
		}
	}
}

// serveConn reads lines from conn until the peer closes it, a read fails,
// or a line is rejected. A line rejected because the relay is shutting down
// only stops reading; the connection is kept until ctx is done. The
// connection is always closed and unregistered on return.
func serveConn(ctx context.Context, conn net.Conn, conf Config) {
	id := conf.Sessions.Connect(ctx, conn)
	l := log.With(conf.Log, "CONN", id.String())
	_ = l.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Accepted connection from %s", conn.RemoteAddr()))

	done := make(chan struct{})
	defer close(done)
	defer conf.Sessions.Disconnect(ctx, id)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	scanner := newLineScanner(conn, conf.MaxLineBytes)
	for scanner.Scan() {
		// The scanner reuses its buffer, so the line must be copied before
		// it is queued.
		line := append([]byte(nil), scanner.Bytes()...)
		_ = l.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Received %d byte line", len(line)), "LINE", string(line))

		resp, err := conf.Endpoint(ctx, queue.Message{ConnID: id, Payload: line})
		if err != nil {
			_ = l.Log("LEVEL", "ERROR", "MESSAGE", err.Error())
			return
		}
		if f, ok := resp.(endpoint.Failer); ok && f.Failed() != nil {
			if errors.Is(f.Failed(), service.ErrShuttingDown) {
				// Lines already queued for this connection may still be
				// echoed, so it stays registered until ctx is done.
				_ = l.Log("LEVEL", "DEBUG", "MESSAGE", "Stopped reading for shutdown")
				<-ctx.Done()
				return
			}
			_ = l.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Closing connection: %s", f.Failed()))
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-ctx.Done():
			_ = l.Log("LEVEL", "DEBUG", "MESSAGE", "Connection closed for shutdown")
		default:
			_ = l.Log("LEVEL", "WARN", "MESSAGE", errors.Wrap(err, "unable to read line").Error())
		}
		return
	}
	_ = l.Log("LEVEL", "INFO", "MESSAGE", "Connection closed by peer")
}
