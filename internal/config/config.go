// Package config loads the solver configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Defaults.
const (
	DefaultCapacity = 4
	DefaultMaxDepth = 60
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration read from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Config holds the configuration of the CLI and the HTTP server.
type Config struct {
	// Capacity is the number of units a tube holds.
	Capacity int `toml:"capacity"`
	// MaxDepth is the default search depth budget.
	MaxDepth int `toml:"max_depth"`
	// Workers is the number of concurrent branch searches.
	// 0 uses one worker per CPU, 1 searches sequentially.
	Workers int `toml:"workers"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Cache configures the verdict store.
type Cache struct {
	Backend    string   `toml:"backend"` // none, memory, badger, redis
	MaxEntries int      `toml:"max_entries"`
	BadgerPath string   `toml:"badger_path"`
	RedisAddr  string   `toml:"redis_addr"`
	RedisDB    int      `toml:"redis_db"`
	TTL        Duration `toml:"ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// Default returns the configuration used without a config file.
func Default() *Config {
	return &Config{
		Capacity: DefaultCapacity,
		MaxDepth: DefaultMaxDepth,
		Workers:  1,
		LogLevel: "info",
		Cache: Cache{
			Backend:    "memory",
			MaxEntries: 10000,
			TTL:        Duration{24 * time.Hour},
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: Duration{30 * time.Second},
		},
	}
}

// Load reads path on top of the defaults. Keys missing in the file keep
// their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q in %s", ErrInvalid, undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	switch {
	case c.Capacity < 1:
		return fmt.Errorf("%w: capacity %d", ErrInvalid, c.Capacity)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth %d", ErrInvalid, c.MaxDepth)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.Cache.Backend {
	case "", "none", "memory", "badger", "redis":
	default:
		return fmt.Errorf("%w: cache backend %q", ErrInvalid, c.Cache.Backend)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() (log.Level, error) {
	return log.ParseLevel(c.LogLevel)
}
