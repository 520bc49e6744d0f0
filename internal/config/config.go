// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and FEST_ env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver picks the document store backend: badger or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// StorePath is the badger directory or the sqlite file.
	StorePath string `koanf:"store_path"`

	// StoreInMemory keeps badger entirely in memory (sqlite uses ":memory:").
	StoreInMemory bool `koanf:"store_in_memory"`

	// SheetURL is the published spreadsheet CSV export. Empty disables the import source.
	SheetURL string `koanf:"sheet_url"`

	SheetTimeoutMS int `koanf:"sheet_timeout_ms"`

	// ListTimeoutMS bounds the public events listing.
	ListTimeoutMS int `koanf:"list_timeout_ms"`

	// UploadURL is the image host endpoint; UploadPreset is sent with every upload.
	UploadURL       string `koanf:"upload_url"`
	UploadPreset    string `koanf:"upload_preset"`
	UploadTimeoutMS int    `koanf:"upload_timeout_ms"`

	// AdminToken guards /api/v1/admin. Empty rejects every admin call.
	AdminToken string `koanf:"admin_token"`

	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// AllowedOrigins feeds the CORS middleware; "*" allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// WorkerCount sets the number of standings recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the change notification queue.
	QueueSize int `koanf:"queue_size"`

	// IdempotencySize bounds the remembered Idempotency-Key values.
	IdempotencySize int `koanf:"idempotency_size"`

	// MaxStandingsLimit caps ?limit on standings endpoints.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// ColumnAliases overrides or extends the spreadsheet header alias table.
	ColumnAliases map[string][]string `koanf:"column_aliases"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		StoreDriver:       DriverBadger,
		StorePath:         "data/fest",
		SheetTimeoutMS:    10_000,
		ListTimeoutMS:     5_000,
		UploadPreset:      "fest_unsigned",
		UploadTimeoutMS:   30_000,
		RateLimitRPS:      5,
		RateLimitBurst:    10,
		AllowedOrigins:    []string{"*"},
		WorkerCount:       1,
		QueueSize:         64,
		IdempotencySize:   10_000,
		MaxStandingsLimit: 500,
	}
}

// SheetTimeout returns the spreadsheet client timeout.
func (c *Config) SheetTimeout() time.Duration {
	return time.Duration(c.SheetTimeoutMS) * time.Millisecond
}

// ListTimeout returns the events listing timeout.
func (c *Config) ListTimeout() time.Duration {
	return time.Duration(c.ListTimeoutMS) * time.Millisecond
}

// UploadTimeout returns the upload client timeout.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutMS) * time.Millisecond
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.StoreDriver {
	case DriverBadger, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	if !c.StoreInMemory && strings.TrimSpace(c.StorePath) == "" {
		return fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.SheetTimeoutMS <= 0 || c.ListTimeoutMS <= 0 || c.UploadTimeoutMS <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig)
	}
	return nil
}
