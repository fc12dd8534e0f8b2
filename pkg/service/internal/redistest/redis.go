// Package redistest implements support code for testing against Redis.
package redistest

import (
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis"
)

// RedisCredentials holds the credentials for connecting to Redis.
type RedisCredentials struct {
	Password string
	Address  string
}

// GetCredentials gets the Redis credentials from environment variables.
//
// REDIS_TEST_ADDRESS takes precedence over REDIS_ADDRESS so tests can be
// pointed at a scratch instance.
func GetCredentials() (rc RedisCredentials, ok bool) {
	a := os.Getenv("REDIS_TEST_ADDRESS")
	if a == "" {
		a = os.Getenv("REDIS_ADDRESS")
	}
	if a == "" {
		return RedisCredentials{}, false
	}
	return RedisCredentials{
		Password: os.Getenv("REDIS_PASS"),
		Address:  a,
	}, true
}

// Connect connects to Redis and returns the Client object.
//
// The test is skipped if no Redis instance is configured or reachable.
func Connect(t *testing.T) *redis.Client {
	creds, ok := GetCredentials()
	if !ok {
		t.Skip("Missing Redis credentials")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         creds.Address,
		Password:     creds.Password,
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis at %s is unreachable: %s", creds.Address, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
