package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based pass store.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
// Missing parent directories of a file path are created.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, errors.WrapError(err, errors.CategoryEventStore, "create history directory").
					WithContext("path", dir).Build()
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEventStore, ErrDatabaseOpenFailed.Message()).Build()
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategoryEventStore, ErrInitializeSchemaFailed.Message()).Build()
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pass_id TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		failures INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_started_at ON passes(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a completed pass.
func (s *SQLiteStore) Append(ctx context.Context, p Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO passes (pass_id, source, started_at, duration_ms, documents, failures) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Source, p.StartedAt.UnixMilli(), p.Duration.Milliseconds(), p.Documents, p.Failures,
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryEventStore, ErrPassAppendFailed.Message()).
			WithContext("pass_id", p.ID).Build()
	}
	return nil
}

// Recent returns up to n passes, newest first. A non-positive n returns all.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		n = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT pass_id, source, started_at, duration_ms, documents, failures FROM passes ORDER BY started_at DESC, id DESC LIMIT ?",
		n,
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEventStore, ErrPassQueryFailed.Message()).Build()
	}
	defer func() { _ = rows.Close() }()

	var passes []Pass
	for rows.Next() {
		var p Pass
		var startedMS, durationMS int64
		if err := rows.Scan(&p.ID, &p.Source, &startedMS, &durationMS, &p.Documents, &p.Failures); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		p.StartedAt = time.UnixMilli(startedMS).UTC()
		p.Duration = time.Duration(durationMS) * time.Millisecond
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
