package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// migrations are applied in order; the index+1 is the schema version.
var migrations = []string{
	`CREATE TABLE charts (
		name       TEXT PRIMARY KEY,
		people     TEXT NOT NULL,
		view       TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX charts_updated_at ON charts (updated_at)`,
}

// SQLiteStore keeps charts in a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates the database at path and applies pending
// migrations. Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	s := &SQLiteStore{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}
	var current int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	for i := current; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			i+1, time.Now().Unix()); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Version returns the applied schema version.
func (s *SQLiteStore) Version(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}

func (s *SQLiteStore) check() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ValidateName(snap.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	snap.UpdatedAt = time.Now().UTC()
	normalize(snap)
	people, err := json.Marshal(snap.People)
	if err != nil {
		return fmt.Errorf("marshal people: %w", err)
	}
	view, err := json.Marshal(snap.View)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO charts (name, people, view, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET people = excluded.people, view = excluded.view, updated_at = excluded.updated_at`,
		snap.Name, string(people), string(view), snap.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving chart %s: %w", snap.Name, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	var people, view string
	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT people, view, updated_at FROM charts WHERE name = ?`, name,
	).Scan(&people, &view, &updated)
	if err == sql.ErrNoRows {
		return Empty(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying chart %s: %w", name, err)
	}

	snap := &Snapshot{Name: name, UpdatedAt: time.UnixMilli(updated).UTC()}
	if err := json.Unmarshal([]byte(people), &snap.People); err != nil {
		return nil, fmt.Errorf("parse people of %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(view), &snap.View); err != nil {
		return nil, fmt.Errorf("parse view of %s: %w", name, err)
	}
	normalize(snap)
	return snap, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM charts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing charts: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM charts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting chart %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

var _ Store = (*SQLiteStore)(nil)
