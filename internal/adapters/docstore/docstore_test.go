package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/fest/internal/config"
	"github.com/okian/fest/pkg/logger"
)

type eventDoc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date,omitempty"`
	Venue string `json:"venue,omitempty"`
	Rank  int    `json:"rank,omitempty"`
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	require.NoError(t, logger.Init())
	return logger.Get()
}

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"badger": func(t *testing.T) Store {
			s, err := OpenBadger(InMemoryBadgerConfig(), testLogger(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(MemoryPath, testLogger(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestCRUD(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			id, err := s.Create(ctx, "events", eventDoc{Name: "QUIZ", Venue: "Hall 1"})
			require.NoError(t, err)
			require.NotEmpty(t, id)

			got, err := GetAs[eventDoc](ctx, s, "events", id)
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
			assert.Equal(t, "QUIZ", got.Name)

			require.NoError(t, s.Update(ctx, "events", id, map[string]any{"venue": "Hall 2", "id": "ignored"}))
			got, err = GetAs[eventDoc](ctx, s, "events", id)
			require.NoError(t, err)
			assert.Equal(t, "Hall 2", got.Venue)
			assert.Equal(t, "QUIZ", got.Name)
			assert.Equal(t, id, got.ID)

			require.NoError(t, s.Delete(ctx, "events", id))
			_, err = GetAs[eventDoc](ctx, s, "events", id)
			require.ErrorIs(t, err, ErrNotFound)

			// Deleting again is a no-op.
			require.NoError(t, s.Delete(ctx, "events", id))
		})
	}
}

func TestSetUpsert(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Set(ctx, "settings", "site", map[string]any{"registrationOpen": true}))
			require.NoError(t, s.Set(ctx, "settings", "site", map[string]any{"maintenanceMode": true}))

			var doc map[string]any
			require.NoError(t, s.Get(ctx, "settings", "site", &doc))
			assert.Equal(t, "site", doc["id"])
			assert.Equal(t, true, doc["maintenanceMode"])
			assert.NotContains(t, doc, "registrationOpen")

			require.ErrorIs(t, s.Set(ctx, "settings", "", map[string]any{}), ErrInvalidKey)
		})
	}
}

func TestUpdateMissing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			err := s.Update(context.Background(), "results", "nope", map[string]any{"points": 3})
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestInvalidInput(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			_, err := s.Create(ctx, "a/b", eventDoc{Name: "x"})
			require.ErrorIs(t, err, ErrInvalidKey)

			_, err = s.Create(ctx, "", eventDoc{Name: "x"})
			require.ErrorIs(t, err, ErrInvalidKey)

			_, err = s.Create(ctx, "events", []string{"not", "an", "object"})
			require.ErrorIs(t, err, ErrNotObject)

			err = s.Get(ctx, "events", "x/y", &eventDoc{})
			require.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestListOptions(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Set(ctx, "events", "e1", eventDoc{Name: "MIME", Date: "2026-03-02", Rank: 2}))
			require.NoError(t, s.Set(ctx, "events", "e2", eventDoc{Name: "QUIZ", Date: "2026-03-01", Rank: 1}))
			require.NoError(t, s.Set(ctx, "events", "e3", eventDoc{Name: "ESSAY WRITING", Rank: 2}))
			require.NoError(t, s.Set(ctx, "gallery", "g1", map[string]any{"title": "other collection"}))

			all, err := ListAs[eventDoc](ctx, s, "events")
			require.NoError(t, err)
			require.Len(t, all, 3)

			byDate, err := ListAs[eventDoc](ctx, s, "events", OrderBy("date", false))
			require.NoError(t, err)
			assert.Equal(t, []string{"e2", "e1", "e3"}, ids(byDate))

			byDateDesc, err := ListAs[eventDoc](ctx, s, "events", OrderBy("date", true))
			require.NoError(t, err)
			assert.Equal(t, []string{"e1", "e2", "e3"}, ids(byDateDesc))

			byRank, err := ListAs[eventDoc](ctx, s, "events", OrderBy("rank", true), Limit(2))
			require.NoError(t, err)
			assert.Equal(t, []string{"e1", "e3"}, ids(byRank))

			ranked2, err := ListAs[eventDoc](ctx, s, "events", WhereEqual("rank", 2))
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"e1", "e3"}, ids(ranked2))

			quiz, err := ListAs[eventDoc](ctx, s, "events", WhereEqual("name", "QUIZ"))
			require.NoError(t, err)
			assert.Equal(t, []string{"e2"}, ids(quiz))

			empty, err := s.List(ctx, "announcements")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func ids(docs []eventDoc) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func TestSubscribe(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ch, err := s.Subscribe(ctx, "results")
			require.NoError(t, err)

			id, err := s.Create(context.Background(), "results", map[string]any{"eventName": "QUIZ"})
			require.NoError(t, err)
			// Second write coalesces into the pending notification.
			require.NoError(t, s.Update(context.Background(), "results", id, map[string]any{"points": 19}))
			// Writes to other collections are not delivered.
			_, err = s.Create(context.Background(), "events", map[string]any{"name": "QUIZ"})
			require.NoError(t, err)

			select {
			case c := <-ch:
				assert.Equal(t, "results", c.Collection)
				assert.Equal(t, id, c.ID)
				assert.Equal(t, ChangeCreated, c.Kind)
			case <-time.After(time.Second):
				t.Fatal("no change delivered")
			}
			select {
			case c := <-ch:
				t.Fatalf("unexpected extra change %+v", c)
			default:
			}

			cancel()
			select {
			case _, ok := <-ch:
				assert.False(t, ok, "channel should close after cancel")
			case <-time.After(time.Second):
				t.Fatal("subscription not closed after cancel")
			}
		})
	}
}

func TestDeleteMissingDoesNotNotify(t *testing.T) {
	s, err := OpenBadger(InMemoryBadgerConfig(), testLogger(t))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := s.Subscribe(ctx, "gallery")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "gallery", "ghost"))
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	s, err := OpenSQLite(MemoryPath, testLogger(t))
	require.NoError(t, err)

	ch, err := s.Subscribe(context.Background(), "settings")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, ok := <-ch
	assert.False(t, ok)

	_, err = s.Subscribe(context.Background(), "settings")
	require.True(t, errors.Is(err, ErrClosed))
}

func TestPersistentBackends(t *testing.T) {
	ctx := context.Background()
	log := testLogger(t)

	t.Run("badger", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "badger")
		cfg := DefaultBadgerConfig(dir)
		cfg.GCInterval = 0
		s, err := OpenBadger(cfg, log)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, "events", "e1", eventDoc{Name: "MIME"}))
		require.NoError(t, s.Close())

		s, err = OpenBadger(cfg, log)
		require.NoError(t, err)
		defer func() { _ = s.Close() }()
		got, err := GetAs[eventDoc](ctx, s, "events", "e1")
		require.NoError(t, err)
		assert.Equal(t, "MIME", got.Name)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db", "fest.db")
		s, err := OpenSQLite(path, log)
		require.NoError(t, err)
		require.NoError(t, s.Set(ctx, "events", "e1", eventDoc{Name: "QUIZ"}))
		require.NoError(t, s.Close())

		s, err = OpenSQLite(path, log)
		require.NoError(t, err)
		defer func() { _ = s.Close() }()
		got, err := GetAs[eventDoc](ctx, s, "events", "e1")
		require.NoError(t, err)
		assert.Equal(t, "QUIZ", got.Name)
	})

	t.Run("badger requires path", func(t *testing.T) {
		_, err := OpenBadger(BadgerConfig{}, log)
		require.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	log := testLogger(t)

	cfg := config.New()
	cfg.StoreInMemory = true
	s, err := Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cfg.StoreDriver = config.DriverSQLite
	s, err = Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	cfg.StoreDriver = "mongo"
	_, err = Open(cfg, log)
	require.ErrorIs(t, err, ErrDriver)
}
