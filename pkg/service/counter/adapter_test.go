//go:build integration

package counter_test

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rwool/linerelay/pkg/service/counter"
	"github.com/rwool/linerelay/pkg/service/internal/redistest"
)

var seedOnce sync.Once

func randString() string {
	seedOnce.Do(func() { rand.Seed(time.Now().UnixNano()) })
	i := rand.Int()
	return strconv.Itoa(i)
}

func TestRedisConnection(t *testing.T) {
	t.Parallel()
	client := redistest.Connect(t)
	require.NoError(t, client.Ping().Err(), "Should be no error with Redis connection.")
}

func TestIncrementAndGet(t *testing.T) {
	t.Parallel()
	c := redistest.Connect(t)
	rc := counter.NewRedisAdapter(c)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := t.Name() + randString()
	var current int64
	incr := func() {
		err := rc.IncrementCounter(ctx, key)
		require.NoError(t, err, "Should increment counter with no error.")
		current++
	}
	get := func() {
		val, err := rc.GetCounter(ctx, key)
		require.NoError(t, err, "Should get counter with no error.")
		require.Equal(t, current, val, "Incremented value should equal retrieved value.")
	}

	get()
	incr()
	get()
	incr()
	incr()
	get()
	get()
	incr()
	get()
}

func TestSetCounter(t *testing.T) {
	t.Parallel()
	c := redistest.Connect(t)
	rc := counter.NewRedisAdapter(c)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := t.Name() + randString()
	require.NoError(t, rc.SetCounter(ctx, key, 100), "Should set counter with no error.")
	require.NoError(t, rc.IncrementCounter(ctx, key), "Should increment counter with no error.")
	val, err := rc.GetCounter(ctx, key)
	require.NoError(t, err, "Should get counter with no error.")
	require.Equal(t, int64(101), val, "Counter should continue from the set value.")
}

func TestResetStartsAtZero(t *testing.T) {
	c := redistest.Connect(t)
	rc := counter.NewRedisAdapter(c)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, rc.IncrementCounter(ctx, counter.KeyEchoed), "Should increment counter with no error.")
	require.NoError(t, counter.Reset(ctx, rc), "Should reset counters with no error.")
	for _, key := range counter.Keys() {
		val, err := rc.GetCounter(ctx, key)
		require.NoError(t, err, "Should get counter with no error.")
		require.Zero(t, val, "Counter %q should start at 0.", key)
	}
}
