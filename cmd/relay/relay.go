package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rwool/linerelay/pkg/config"
	"github.com/rwool/linerelay/pkg/endpoint"
	"github.com/rwool/linerelay/pkg/handoff"
	"github.com/rwool/linerelay/pkg/queuesubscribe"
	"github.com/rwool/linerelay/pkg/service"
	"github.com/rwool/linerelay/pkg/service/counter"
	"github.com/rwool/linerelay/pkg/service/queue"
	"github.com/rwool/linerelay/pkg/tcp"
)

// serve runs the relay on lis until ctx is done. The relay counters are
// reset first, so the statistics logged on return cover this run only.
//
// Shutdown closes the queue and stops accepting. With a lossy queue the
// connections are closed right away, which also unblocks a writer stuck on
// a slow client. With a draining queue they stay open until the writer has
// delivered what was buffered, or until the drain timeout passes.
func serve(ctx context.Context, lis net.Listener, cfg config.Config, c counter.Counter, l log.Logger) error {
	if err := counter.Reset(ctx, c); err != nil {
		_ = l.Log("LEVEL", "WARN", "MESSAGE", err.Error())
	}

	q := queue.New(cfg.Queue.Capacity, cfg.Queue.DrainOnClose)
	registry := service.NewRegistry()

	// Business logic.
	readerService := service.NewReaderService(service.ReaderServiceConfig{
		Queue:    q,
		Registry: registry,
		Counter:  c,
		Log:      l,
	})
	writerService := service.NewWriterService(service.WriterServiceConfig{
		Registry: registry,
		Counter:  c,
		Log:      l,
	})

	// Endpoints.
	submitEndpoint := endpoint.MakeSubmitEndpoint(readerService)
	echoEndpoint := endpoint.MakeEchoEndpoint(writerService)

	// Transports.
	listen := tcp.MakeListenerHandler(tcp.Config{
		Endpoint:     submitEndpoint,
		Sessions:     readerService,
		Log:          l,
		MaxLineBytes: cfg.MaxLineBytes,
	})
	writer := queuesubscribe.MakeWriterHandler(queuesubscribe.Config{
		Endpoint: echoEndpoint,
		Queue:    q,
		Log:      l,
	})

	group, gctx := errgroup.WithContext(ctx)
	connCtx, closeConns := context.WithCancel(context.Background())
	defer closeConns()
	writerDone := make(chan struct{})

	group.Go(func() error {
		<-gctx.Done()
		_ = l.Log("LEVEL", "INFO", "MESSAGE", "Shutting down relay")
		q.Close()
		_ = lis.Close()
		if cfg.Queue.DrainOnClose {
			waitForDrain(writerDone, cfg.Queue.DrainTimeout, l)
		}
		closeConns()
		return nil
	})
	group.Go(func() error {
		defer close(writerDone)
		writer(connCtx)
		return nil
	})
	group.Go(func() error {
		return listen(connCtx, lis)
	})

	err := group.Wait()
	if cErr := registry.CloseAll(); cErr != nil {
		_ = l.Log("LEVEL", "WARN", "MESSAGE", cErr.Error())
	}
	logStats(c, q.Stats(), l)
	return errors.WithStack(err)
}

func waitForDrain(writerDone <-chan struct{}, timeout time.Duration, l log.Logger) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-writerDone:
	case <-t.C:
		_ = l.Log("LEVEL", "WARN", "MESSAGE", fmt.Sprintf("Queue not drained after %s, closing connections", timeout))
	}
}

func logStats(c counter.Counter, qs handoff.Stats, l log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	keyvals := []interface{}{"LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Relay stopped, queue %+v", qs)}
	for _, key := range counter.Keys() {
		v, err := c.GetCounter(ctx, key)
		if err != nil {
			_ = l.Log("LEVEL", "WARN", "MESSAGE", err.Error())
			continue
		}
		keyvals = append(keyvals, key, v)
	}
	_ = l.Log(keyvals...)
}
