// Command relay runs a TCP line relay: every newline terminated line a
// client sends is echoed back to it through a bounded queue shared by all
// connections.
//
// Configuration is read from the environment; see package config.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"

	"github.com/rwool/linerelay/pkg/config"
	"github.com/rwool/linerelay/pkg/service/counter"
)

func main() {
	os.Exit(run())
}

func run() int {
	l := log.NewJSONLogger(os.Stderr)
	l = log.With(l, "TS", log.DefaultTimestampUTC)

	cfg, err := config.Load()
	if err != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", err)
		return 1
	}

	c, closeCounter, err := newCounter(cfg.Redis)
	if err != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", err)
		return 1
	}
	defer closeCounter()

	// Separate listening and serving to capture listen errors.
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", errors.Wrap(err, "unable to create TCP listener"))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, lis, cfg, c, l); err != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", err)
		return 1
	}
	return 0
}

// newCounter returns the statistics store. Redis is used when an address is
// configured, process memory otherwise.
func newCounter(conf config.Redis) (counter.Counter, func(), error) {
	if conf.Address == "" {
		return counter.NewMemory(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         conf.Address,
		Password:     conf.Password,
		DB:           conf.DB,
		MaxRetries:   10,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Wrapf(err, "unable to reach Redis at %s", conf.Address)
	}
	return counter.NewRedisAdapter(client), func() { _ = client.Close() }, nil
}
