package service

import (
	"context"
	"time"

	"github.com/okian/fest/internal/adapters/upload"
	"github.com/okian/fest/internal/domain/participant"
	"github.com/okian/fest/internal/domain/types"
	"github.com/okian/fest/pkg/logger"
)

// SheetSource supplies imported participant records.
type SheetSource interface {
	Configured() bool
	FetchRecords(ctx context.Context) ([]participant.Record, error)
}

// Broadcaster receives every published standings snapshot, already
// filtered for public display.
type Broadcaster interface {
	Broadcast(s types.Standings)
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of standings workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the change queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTopLimit caps individual standings queries.
func WithTopLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topLimit = n
		}
	}
}

// WithListTimeout bounds the public events listing.
func WithListTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.listTimeout = d
		}
	}
}

// WithSheet sets the spreadsheet source.
func WithSheet(src SheetSource) Option {
	return func(s *Service) {
		s.sheet = src
	}
}

// WithUploader sets the image host client.
func WithUploader(u upload.Uploader) Option {
	return func(s *Service) {
		s.uploader = u
	}
}

// WithBroadcaster registers a receiver for standings pushes.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		s.broadcaster = b
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for stored timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
