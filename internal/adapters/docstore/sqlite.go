package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/fest/pkg/logger"
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
  collection TEXT NOT NULL,
  id TEXT NOT NULL,
  body TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (collection, id)
);
`

type sqliteBackend struct {
	conn *sql.DB
}

// OpenSQLite opens a SQLite backed store at path, or in memory for MemoryPath.
func OpenSQLite(path string, log logger.Logger) (Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: writes are serialized and ":memory:" stays one database.
	conn.SetMaxOpenConns(1)

	if path != MemoryPath {
		if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	if _, err := conn.Exec(sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	log.Info(context.Background(), "document store opened",
		logger.String("backend", "sqlite"),
		logger.String("path", path),
	)
	return newDocStore(&sqliteBackend{conn: conn}, log), nil
}

func (s *sqliteBackend) name() string { return "sqlite" }

func (s *sqliteBackend) get(ctx context.Context, collection, id string) ([]byte, error) {
	var body string
	err := s.conn.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (s *sqliteBackend) put(ctx context.Context, collection, id string, body []byte) error {
	_, err := s.conn.ExecContext(ctx, `
INSERT INTO documents (collection, id, body, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(collection, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		collection, id, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *sqliteBackend) modify(ctx context.Context, collection, id string, fn func([]byte) ([]byte, error)) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	err = tx.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	next, err := fn([]byte(body))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(next), time.Now().UTC().Format(time.RFC3339Nano), collection, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteBackend) del(ctx context.Context, collection, id string) (bool, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *sqliteBackend) scan(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: []byte(body)})
	}
	return docs, rows.Err()
}

func (s *sqliteBackend) close() error {
	return s.conn.Close()
}
