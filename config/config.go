package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

const epochLayout = "2006-01-02"

// Config struct to hold the configuration settings
type Config struct {
	Store         StoreConfig         `yaml:"store"`
	NATS          NATSConfig          `yaml:"nats"`
	Wordle        WordleConfig        `yaml:"wordle"`
	Queue         QueueConfig         `yaml:"queue"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StoreConfig selects and locates the leaderboard store.
type StoreConfig struct {
	Driver      string `yaml:"driver" env:"STORE_DRIVER"`
	DSN         string `yaml:"dsn" env:"DATABASE_URL"`
	Path        string `yaml:"path" env:"SQLITE_PATH"`
	RedisURL    string `yaml:"redis_url" env:"REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"`

	// RedisAOFSync, when set, makes each flush wait this long for the
	// append-only file to be fsynced.
	RedisAOFSync time.Duration `yaml:"redis_aof_sync" env:"REDIS_AOF_SYNC"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL        string `yaml:"url" env:"NATS_URL"`
	QueueGroup string `yaml:"queue_group" env:"NATS_QUEUE_GROUP"`
	JetStream  bool   `yaml:"jetstream" env:"NATS_JETSTREAM"`
}

// WordleConfig holds the puzzle calendar and ingestion settings.
type WordleConfig struct {
	// Epoch is the date puzzle day 1 started, YYYY-MM-DD in UTC.
	Epoch     string          `yaml:"epoch" env:"WORDLE_EPOCH"`
	Grace     time.Duration   `yaml:"grace" env:"WORDLE_GRACE"`
	DayWindow DayWindowConfig `yaml:"day_window" envPrefix:"WORDLE_DAY_WINDOW_"`
	History   HistoryConfig   `yaml:"history" envPrefix:"WORDLE_HISTORY_"`
}

// DayWindowConfig configures the reported-day plausibility check.
type DayWindowConfig struct {
	Enabled   bool          `yaml:"enabled" env:"ENABLED"`
	Tolerance time.Duration `yaml:"tolerance" env:"TOLERANCE"`
}

// HistoryConfig configures channel history paging over NATS.
type HistoryConfig struct {
	Subject  string        `yaml:"subject" env:"SUBJECT"`
	PageSize int           `yaml:"page_size" env:"PAGE_SIZE"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// QueueConfig enables running backfills as river jobs. Postgres only.
type QueueConfig struct {
	Enabled bool `yaml:"enabled" env:"QUEUE_ENABLED"`
	Workers int  `yaml:"workers" env:"QUEUE_WORKERS"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat      string `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsAddress string `yaml:"metrics_address" env:"METRICS_ADDRESS"` // empty disables the server
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver:      DriverSQLite,
			Path:        "wordle.db",
			RedisPrefix: "wordle",
		},
		NATS: NATSConfig{
			URL:        "nats://localhost:4222",
			QueueGroup: "wordle-bot",
		},
		Wordle: WordleConfig{
			Epoch: "2021-06-20",
			Grace: 24 * time.Hour,
			DayWindow: DayWindowConfig{
				Tolerance: 14 * time.Hour,
			},
			History: HistoryConfig{
				Subject:  "wordle.history.request.v1",
				PageSize: 100,
				Timeout:  10 * time.Second,
			},
		},
		Queue: QueueConfig{
			Workers: 2,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file leaves the defaults in place.
func LoadConfig(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if _, err := c.EpochTime(); err != nil {
		return err
	}
	if c.Wordle.Grace < 0 || c.Wordle.DayWindow.Tolerance < 0 {
		return errors.New("wordle.grace and wordle.day_window.tolerance must not be negative")
	}
	if c.Wordle.History.PageSize <= 0 {
		return errors.New("wordle.history.page_size must be positive")
	}
	if c.Queue.Enabled && c.Store.Driver != DriverPostgres {
		return errors.New("queue requires the postgres store driver")
	}
	return nil
}

// EpochTime parses Wordle.Epoch as a UTC date.
func (c *Config) EpochTime() (time.Time, error) {
	t, err := time.Parse(epochLayout, c.Wordle.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid wordle.epoch %q: %w", c.Wordle.Epoch, err)
	}
	return t, nil
}

// SQLDSN returns the bun DSN for the configured SQL driver.
func (c *Config) SQLDSN() string {
	if c.Store.Driver == DriverSQLite {
		return c.Store.Path
	}
	return c.Store.DSN
}
