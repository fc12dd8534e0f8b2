package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwool/linerelay/pkg/config"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Should write temp config file.")
	return path
}

// clearEnv makes sure values from the surrounding environment do not leak
// into a test.
func clearEnv(t *testing.T) {
	for _, k := range []string{
		config.EnvConfigFile,
		config.EnvAddress,
		config.EnvQueueCapacity,
		config.EnvDrainOnClose,
		config.EnvDrainTimeout,
		config.EnvMaxLineBytes,
		config.EnvRedisAddress,
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k), "Should unset %s.", k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err, "Loading defaults should succeed.")
	assert.Equal(t, config.DefaultAddress, cfg.Address, "Default address should be the loopback relay port.")
	assert.Equal(t, config.DefaultQueueCapacity, cfg.Queue.Capacity, "Default capacity should be used.")
	assert.False(t, cfg.Queue.DrainOnClose, "Shutdown should be lossy by default.")
	assert.Equal(t, config.DefaultMaxLineBytes, cfg.MaxLineBytes, "Default line limit should be used.")
	assert.Equal(t, config.DefaultDrainTimeout, cfg.Queue.DrainTimeout, "Default drain timeout should be used.")
	assert.Empty(t, cfg.Redis.Address, "Redis should be disabled by default.")
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvAddress, "127.0.0.1:9999")
	t.Setenv(config.EnvQueueCapacity, "7")
	t.Setenv(config.EnvDrainOnClose, "true")
	t.Setenv(config.EnvDrainTimeout, "250ms")
	t.Setenv(config.EnvMaxLineBytes, "128")
	t.Setenv(config.EnvRedisAddress, "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err, "Loading from environment should succeed.")
	assert.Equal(t, "127.0.0.1:9999", cfg.Address)
	assert.Equal(t, 7, cfg.Queue.Capacity)
	assert.True(t, cfg.Queue.DrainOnClose)
	assert.Equal(t, 250*time.Millisecond, cfg.Queue.DrainTimeout)
	assert.Equal(t, 128, cfg.MaxLineBytes)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_REDIS_PASSWORD", "secret123")

	path := writeTempFile(t, `
address: 127.0.0.1:4000
queue:
  capacity: 12
  drain_on_close: true
  drain_timeout: 2s
redis:
  address: redis:6379
  password: ${TEST_REDIS_PASSWORD}
`)
	t.Setenv(config.EnvConfigFile, path)
	t.Setenv(config.EnvQueueCapacity, "3")

	cfg, err := config.Load()
	require.NoError(t, err, "Loading config file should succeed.")
	assert.Equal(t, "127.0.0.1:4000", cfg.Address, "File should override defaults.")
	assert.Equal(t, 3, cfg.Queue.Capacity, "Environment should override the file.")
	assert.True(t, cfg.Queue.DrainOnClose, "File value should be kept.")
	assert.Equal(t, 2*time.Second, cfg.Queue.DrainTimeout, "Durations should parse from the file.")
	assert.Equal(t, "secret123", cfg.Redis.Password, "${VAR} should be expanded.")
	assert.Equal(t, config.DefaultMaxLineBytes, cfg.MaxLineBytes, "Unset fields should keep defaults.")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Bad Capacity", env: map[string]string{config.EnvQueueCapacity: "many"}},
		{name: "Zero Capacity", env: map[string]string{config.EnvQueueCapacity: "0"}},
		{name: "Bad Drain", env: map[string]string{config.EnvDrainOnClose: "perhaps"}},
		{name: "Bad Drain Timeout", env: map[string]string{config.EnvDrainTimeout: "soon"}},
		{name: "Bad Line Limit", env: map[string]string{config.EnvMaxLineBytes: "1"}},
		{name: "Missing File", env: map[string]string{config.EnvConfigFile: "/nonexistent/relay.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err, "Loading should fail.")
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "Valid", mutate: func(*config.Config) {}},
		{
			name:    "Missing Address",
			mutate:  func(c *config.Config) { c.Address = "" },
			wantErr: "address is required",
		},
		{
			name:    "Negative Capacity",
			mutate:  func(c *config.Config) { c.Queue.Capacity = -1 },
			wantErr: "queue.capacity must be >= 1, got -1",
		},
		{
			name:    "Negative Drain Timeout",
			mutate:  func(c *config.Config) { c.Queue.DrainTimeout = -time.Second },
			wantErr: "queue.drain_timeout must not be negative, got -1s",
		},
		{
			name:    "Tiny Line Limit",
			mutate:  func(c *config.Config) { c.MaxLineBytes = 1 },
			wantErr: "max_line_bytes must be >= 2, got 1",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err, "Config should be valid.")
				return
			}
			require.Error(t, err, "Config should be invalid.")
			assert.Equal(t, tt.wantErr, err.Error(), "Error message should match.")
		})
	}
}
