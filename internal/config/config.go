package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/logsapi"
	"github.com/custodia-labs/chatlog-backfill/internal/adapters/driven/storage"
	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "backfill.toml"

// Config holds every setting of a backfill run.
type Config struct {
	// MongoURI selects the MongoDB backend when set.
	MongoURI string `toml:"mongodb_connection_string" env:"MONGODB_CONNECTION_STRING"`

	// Database is the MongoDB database name.
	Database string `toml:"database_name" env:"BACKFILL_DATABASE"`

	// Channel is the channel to backfill.
	Channel string `toml:"channel_name" env:"BACKFILL_CHANNEL"`

	// StartFrom is the exclusive start day in YYYY/M/D form.
	StartFrom string `toml:"start_from_day" env:"BACKFILL_START"`

	// Compact writes single-line JSON files.
	Compact bool `toml:"compact" env:"BACKFILL_COMPACT"`

	// OutputDir is the root of the file backend.
	OutputDir string `toml:"output_dir" env:"BACKFILL_OUTPUT_DIR"`

	// SQLitePath selects the SQLite backend when set and MongoURI is empty.
	SQLitePath string `toml:"sqlite_path" env:"BACKFILL_SQLITE_PATH"`

	// BaseURL is the logs API root.
	BaseURL string `toml:"base_url" env:"BACKFILL_BASE_URL"`

	// RequestsPerSecond throttles fetches. 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second" env:"BACKFILL_RATE"`

	// Timeout bounds each request, e.g. "30s". Empty means no timeout.
	Timeout string `toml:"timeout" env:"BACKFILL_TIMEOUT"`

	// Timezone decides which date is "today". Empty means the local zone.
	Timezone string `toml:"timezone" env:"BACKFILL_TIMEZONE"`

	start    domain.Day
	timeout  time.Duration
	location *time.Location
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		OutputDir: ".",
		BaseURL:   logsapi.DefaultBaseURL,
	}
}

// Load builds a Config from defaults, the TOML file at path and the
// environment. An empty path reads DefaultFile if it exists; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.LoadFile(path); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, err
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays values from a TOML file. Keys missing from the file
// keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", domain.ErrConfiguration, path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", domain.ErrConfiguration, path, err)
	}
	return nil
}

// LoadEnv overlays values from environment variables. Unset or empty
// variables keep the current value.
func (c *Config) LoadEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("%w: environment: %w", domain.ErrConfiguration, err)
	}
	return nil
}

// Validate checks the final settings and resolves derived values.
func (c *Config) Validate() error {
	if c.Channel == "" {
		return fmt.Errorf("%w: channel name is required", domain.ErrConfiguration)
	}

	if c.StartFrom == "" {
		return fmt.Errorf("%w: start day is required", domain.ErrConfiguration)
	}
	start, err := domain.ParseDay(c.StartFrom)
	if err != nil {
		return fmt.Errorf("%w: start day: %w", domain.ErrConfiguration, err)
	}

	if err := storage.Validate(c.StorageOptions()); err != nil {
		return err
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", domain.ErrConfiguration)
	}

	var timeout time.Duration
	if c.Timeout != "" {
		timeout, err = time.ParseDuration(c.Timeout)
		if err != nil || timeout < 0 {
			return fmt.Errorf("%w: invalid timeout %q", domain.ErrConfiguration, c.Timeout)
		}
	}

	loc := time.Local
	if c.Timezone != "" {
		loc, err = time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("%w: timezone: %w", domain.ErrConfiguration, err)
		}
	}

	c.start = start
	c.timeout = timeout
	c.location = loc
	return nil
}

// Start returns the parsed start day. Valid after Validate.
func (c *Config) Start() domain.Day {
	return c.start
}

// RequestTimeout returns the parsed timeout. Valid after Validate.
func (c *Config) RequestTimeout() time.Duration {
	return c.timeout
}

// Location returns the zone used for "today". Valid after Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Backend returns the storage backend these settings select.
func (c *Config) Backend() storage.Kind {
	return storage.Resolve(c.StorageOptions())
}

// StorageOptions returns the settings the storage backends need.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		MongoURI:   c.MongoURI,
		Database:   c.Database,
		SQLitePath: c.SQLitePath,
		OutputDir:  c.OutputDir,
		Compact:    c.Compact,
	}
}

// FetchOptions returns the settings the logs API client needs.
func (c *Config) FetchOptions() logsapi.Options {
	return logsapi.Options{
		BaseURL:           c.BaseURL,
		Timeout:           c.timeout,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}
