package repository

import "time"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithTopLimit caps how many individuals TopIndividuals may return.
func WithTopLimit(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.topLimit = n
		}
	}
}

// WithClock overrides the clock stamped on published snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}
