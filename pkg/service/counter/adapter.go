package counter

import (
	"context"
	"strconv"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// NewRedisAdapter creates a Redis client that supports maintaining counters.
func NewRedisAdapter(c *redis.Client) *RedisAdapter {
	if c == nil {
		panic("nil counter client")
	}
	return &RedisAdapter{c: c}
}

// Ensure RedisAdapter implements the Counter interface.
var _ Counter = (*RedisAdapter)(nil)

// RedisAdapter adapts a Redis client to support the Counter interface.
type RedisAdapter struct {
	c *redis.Client
}

// SetCounter sets the counter with the given key to value.
func (r *RedisAdapter) SetCounter(ctx context.Context, key string, value int64) error {
	if len(key) == 0 {
		return errors.New("invalid key")
	}
	client := r.c.WithContext(ctx)
	valString := strconv.FormatInt(value, 10)
	err := client.Set(key, valString, 0).Err()
	return errors.Wrapf(err, "failed to set number for key: %q", key)
}

// GetCounter gets the current value of a counter.
//
// A key that was never set reads as 0.
func (r *RedisAdapter) GetCounter(ctx context.Context, key string) (int64, error) {
	if len(key) == 0 {
		return 0, errors.New("invalid key")
	}
	client := r.c.WithContext(ctx)
	current, err := client.Get(key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to get number for key: %q", key)
	}
	v, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected format or not a number for key %q", key)
	}
	return v, nil
}

// IncrementCounter increments the value with the given key.
//
// If the key does not exist, it will be initialized to 0 and incremented.
func (r *RedisAdapter) IncrementCounter(ctx context.Context, key string) error {
	if len(key) == 0 {
		return errors.New("invalid key")
	}
	client := r.c.WithContext(ctx)
	err := client.Incr(key).Err()
	return errors.Wrapf(err, "failed to increment value for key %q", key)
}
