// Package sqlite implements storage.Store on top of database/sql
// using the pure-Go ncruces/go-sqlite3 driver, mirroring the teacher's
// sqlite backend (internal/storage/sqlite, internal/storage/ephemeral)
// down to the driver choice and connection-pool settings.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/commonplaces/placecore/internal/storage"
)

// Store is a SQLite-backed storage.Store. Writes are serialized
// through mu to honor the single-writer model of spec.md §5 even
// though SQLite itself also serializes at the connection-pool level;
// the explicit mutex keeps the optimistic-version check and the
// revision insert atomic from the caller's point of view without
// relying on SQLite's busy-timeout retry behavior.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) a SQLite database at path and
// applies the schema. Use ":memory:" for an ephemeral, process-local
// database.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal=WAL&_busy_timeout=5000&_foreign_keys=1", path)
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared&_foreign_keys=1"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

var _ storage.Store = (*Store)(nil)

// withTx runs fn inside a serializable transaction, holding mu for the
// duration so concurrent CreateOrUpdatePlace/ReviewPlaces calls
// observe a consistent view of current_rev (spec.md §5).
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
