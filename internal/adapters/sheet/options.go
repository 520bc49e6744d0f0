package sheet

import (
	"net/http"
	"time"

	"github.com/okian/fest/internal/domain/normalize"
	"github.com/okian/fest/pkg/logger"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithAliases sets the column alias table used by FetchRecords.
func WithAliases(t normalize.AliasTable) Option {
	return func(f *Fetcher) {
		if t != nil {
			f.aliases = t
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// WithClock overrides the clock used for the cache-busting parameter.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}
