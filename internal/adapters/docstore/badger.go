package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/okian/fest/pkg/logger"
)

// BadgerConfig holds configuration for the badger backend.
type BadgerConfig struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// GCInterval is how often value log GC runs. 0 disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio that triggers a rewrite.
	GCDiscardRatio float64

	// Logger receives badger's internal log lines. Nil silences them.
	Logger logger.Logger
}

// DefaultBadgerConfig returns production defaults for path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryBadgerConfig returns a configuration for tests.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts logger.Logger to badger's Logger interface.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(context.Background(), fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(context.Background(), fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(context.Background(), fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(context.Background(), fmt.Sprintf(format, args...))
}

type badgerBackend struct {
	db     *badger.DB
	stopGC chan struct{}
	gcDone chan struct{}
}

// OpenBadger opens a badger backed store.
func OpenBadger(cfg BadgerConfig, log logger.Logger) (Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("docstore: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{log: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	be := &badgerBackend{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		be.stopGC = make(chan struct{})
		be.gcDone = make(chan struct{})
		go be.runGC(cfg.GCInterval, cfg.GCDiscardRatio, log)
	}
	log.Info(context.Background(), "document store opened",
		logger.String("backend", "badger"),
		logger.Bool("in_memory", cfg.InMemory),
		logger.String("path", cfg.Path),
	)
	return newDocStore(be, log), nil
}

func (b *badgerBackend) runGC(interval time.Duration, ratio float64, log logger.Logger) {
	defer close(b.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite means there was nothing to collect.
			if err := b.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				log.Warn(context.Background(), "badger value log GC error", logger.Error(err))
			}
		}
	}
}

func (b *badgerBackend) name() string { return "badger" }

func badgerKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func (b *badgerBackend) get(_ context.Context, collection, id string) ([]byte, error) {
	var body []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(collection, id))
		if err != nil {
			return err
		}
		body, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return body, err
}

func (b *badgerBackend) put(_ context.Context, collection, id string, body []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(collection, id), body)
	})
}

func (b *badgerBackend) modify(_ context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(collection, id)
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		cur, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		return txn.Set(key, next)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

func (b *badgerBackend) del(_ context.Context, collection, id string) (bool, error) {
	existed := false
	err := b.db.Update(func(txn *badger.Txn) error {
		key := badgerKey(collection, id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		existed = true
		return txn.Delete(key)
	})
	return existed, err
}

func (b *badgerBackend) scan(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	prefix := []byte(collection + "/")
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			body, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			docs = append(docs, Document{ID: string(item.Key()[len(prefix):]), Data: body})
		}
		return nil
	})
	return docs, err
}

func (b *badgerBackend) close() error {
	if b.stopGC != nil {
		close(b.stopGC)
		<-b.gcDone
	}
	return b.db.Close()
}
