// Package config loads the relay configuration.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// RELAY_CONFIG, then individual environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Default values for optional configuration fields.
const (
	DefaultAddress       = "127.0.0.1:12345"
	DefaultQueueCapacity = 100
	DefaultMaxLineBytes  = 64 * 1024
	DefaultDrainTimeout  = 5 * time.Second
)

// Environment variables read by Load.
const (
	EnvConfigFile    = "RELAY_CONFIG"
	EnvAddress       = "RELAY_ADDRESS"
	EnvQueueCapacity = "RELAY_QUEUE_CAPACITY"
	EnvDrainOnClose  = "RELAY_DRAIN_ON_CLOSE"
	EnvDrainTimeout  = "RELAY_DRAIN_TIMEOUT"
	EnvMaxLineBytes  = "RELAY_MAX_LINE_BYTES"
	EnvRedisAddress  = "REDIS_ADDRESS"
)

// Config contains all of the configuration for running the relay.
type Config struct {
	// Address is the TCP address the relay listens on.
	Address string `yaml:"address"`
	Queue   Queue  `yaml:"queue"`
	// MaxLineBytes bounds a single message, delimiter included.
	MaxLineBytes int   `yaml:"max_line_bytes"`
	Redis        Redis `yaml:"redis"`
}

// Queue configures the handoff queue between readers and the writer.
type Queue struct {
	Capacity int `yaml:"capacity"`
	// DrainOnClose delivers buffered messages after shutdown starts instead
	// of discarding them.
	DrainOnClose bool `yaml:"drain_on_close"`
	// DrainTimeout bounds how long shutdown waits for the drain before
	// closing connections anyway.
	DrainTimeout time.Duration `yaml:"drain_timeout"`
}

// Redis configures the optional statistics store. An empty Address disables
// it.
type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Address:      DefaultAddress,
		Queue:        Queue{Capacity: DefaultQueueCapacity, DrainTimeout: DefaultDrainTimeout},
		MaxLineBytes: DefaultMaxLineBytes,
	}
}

// Load builds the configuration from defaults, the optional config file and
// the environment, and validates it.
func Load() (Config, error) {
	cfg := Default()
	if path, ok := os.LookupEnv(EnvConfigFile); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// loadFile overlays the YAML file at path, expanding ${VAR} references.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "unable to read config file %q", path)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return errors.Wrapf(err, "unable to parse config file %q", path)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v, ok := os.LookupEnv(EnvAddress); ok {
		c.Address = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddress); ok {
		c.Redis.Address = v
	}
	if v, ok := os.LookupEnv(EnvQueueCapacity); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s is not a number", EnvQueueCapacity)
		}
		c.Queue.Capacity = n
	}
	if v, ok := os.LookupEnv(EnvMaxLineBytes); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s is not a number", EnvMaxLineBytes)
		}
		c.MaxLineBytes = n
	}
	if v, ok := os.LookupEnv(EnvDrainOnClose); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s is not a boolean", EnvDrainOnClose)
		}
		c.Queue.DrainOnClose = b
	}
	if v, ok := os.LookupEnv(EnvDrainTimeout); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s is not a duration", EnvDrainTimeout)
		}
		c.Queue.DrainTimeout = d
	}
	return nil
}

// Validate checks that all values are usable.
func (c Config) Validate() error {
	if c.Address == "" {
		return errors.New("address is required")
	}
	if c.Queue.Capacity < 1 {
		return errors.Errorf("queue.capacity must be >= 1, got %d", c.Queue.Capacity)
	}
	if c.Queue.DrainTimeout < 0 {
		return errors.Errorf("queue.drain_timeout must not be negative, got %s", c.Queue.DrainTimeout)
	}
	// Room for at least one byte of payload plus the delimiter.
	if c.MaxLineBytes < 2 {
		return errors.Errorf("max_line_bytes must be >= 2, got %d", c.MaxLineBytes)
	}
	return nil
}
