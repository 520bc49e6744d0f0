// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the admin CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/fest/internal/adapters/docstore"
	eventqueue "github.com/okian/fest/internal/adapters/mq/queue"
	workerpool "github.com/okian/fest/internal/adapters/mq/worker"
	"github.com/okian/fest/internal/adapters/repository"
	"github.com/okian/fest/internal/adapters/upload"
	"github.com/okian/fest/internal/domain/dedupe"
	"github.com/okian/fest/internal/domain/model"
	"github.com/okian/fest/internal/domain/scoring"
	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

// Default service configuration.
const (
	defaultWorkerCount = 1
	defaultQueueSize   = 64
	defaultDedupeSize  = 10000
	defaultTopLimit    = 500
	defaultListTimeout = 5 * time.Second
)

// Collections whose writes change the published standings.
var watchedCollections = []string{model.CollectionResults, model.CollectionSettings}

// Service implements the API dependencies for the festival backend.
type Service struct {
	mu sync.RWMutex
	// rebuildMu orders rebuilds so the last publish reflects the last read.
	rebuildMu sync.Mutex

	// Core components
	store     docstore.Store
	engine    *scoring.Engine
	standings *repository.SnapshotStore
	deduper   dedupe.Deduper
	queue     *eventqueue.InMemoryQueue
	pool      *workerpool.Pool

	// Collaborators
	sheet       SheetSource
	uploader    upload.Uploader
	broadcaster Broadcaster

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	topLimit    int
	listTimeout time.Duration
	now         func() time.Time

	// State
	started bool
	cancel  context.CancelFunc
	feeds   sync.WaitGroup

	logger logger.Logger
}

// New constructs a Service over store. CRUD operations work right away;
// Start launches the live standings pipeline.
func New(store docstore.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		topLimit:    defaultTopLimit,
		listTimeout: defaultListTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.engine = scoring.NewEngine()
	s.standings = repository.NewSnapshotStore(
		repository.WithTopLimit(s.topLimit),
		repository.WithClock(s.now),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start subscribes to store changes, starts the standings workers and
// publishes an initial snapshot.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting festival service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	for _, coll := range watchedCollections {
		changes, err := s.store.Subscribe(runCtx, coll)
		if err != nil {
			cancel()
			_ = s.queue.Close()
			return fmt.Errorf("subscribe %s: %w", coll, err)
		}
		s.feeds.Add(1)
		go s.forward(runCtx, changes)
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue,
		workerpool.HandlerFunc(s.handleChange),
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	s.pool.Start(runCtx)

	if _, err := s.Rebuild(ctx); err != nil {
		s.logger.Error(ctx, "initial standings build failed", logger.Error(err))
	}

	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "festival service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// forward turns store change notifications into queue events.
func (s *Service) forward(ctx context.Context, changes <-chan docstore.Change) {
	defer s.feeds.Done()
	for c := range changes {
		ok := s.queue.Enqueue(ctx, eventqueue.Event{
			Collection: c.Collection,
			DocID:      c.ID,
			Kind:       string(c.Kind),
		})
		if !ok {
			s.logger.Debug(ctx, "standings rebuild already pending, change dropped",
				logger.String("collection", c.Collection),
				logger.String("id", c.ID),
			)
		}
	}
}

func (s *Service) handleChange(ctx context.Context, e workerpool.Event, coalesced int) error {
	s.logger.Debug(ctx, "rebuilding standings",
		logger.String("collection", e.Collection),
		logger.String("kind", e.Kind),
		logger.Int("coalesced", coalesced),
	)
	_, err := s.Rebuild(ctx)
	return err
}

// Stop gracefully shuts down the live pipeline. The store is owned by the
// caller and stays open.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping festival service...")

	s.cancel()
	s.feeds.Wait()

	var err error
	if s.pool != nil {
		err = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "festival service stopped")
	return err
}

// Claim reserves an idempotency key. It reports true when the key was
// claimed before, together with the stored result id.
func (s *Service) Claim(ctx context.Context, key string) (string, bool) {
	result, seen := s.deduper.Claim(ctx, key)
	if seen {
		metrics.RecordIdempotentReplay()
	}
	return result, seen
}

// Complete records the result id of a claimed key.
func (s *Service) Complete(ctx context.Context, key, result string) {
	s.deduper.Complete(ctx, key, result)
}

// Release forgets a claimed key so the request can be retried.
func (s *Service) Release(ctx context.Context, key string) {
	s.deduper.Release(ctx, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	snap := s.standings.Snapshot()
	stats := map[string]any{
		"started":           s.started,
		"workerCount":       s.workerCount,
		"queueSize":         s.queueSize,
		"idempotencyKeys":   s.deduper.Size(),
		"standingsVersion":  snap.Standings.Version,
		"rankedIndividuals": s.standings.Count(ctx),
		"rankedTeams":       len(snap.Standings.Teams),
		"sheetConfigured":   s.sheet != nil && s.sheet.Configured(),
		"uploadConfigured":  s.uploader != nil,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}

// notFound maps the store's not-found error onto ErrNotFound for callers
// that test with errors.Is on either.
func notFound(err error, what, id string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %q: %w", what, id, err)
}
