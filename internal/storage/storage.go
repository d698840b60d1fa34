package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	driverName = "sqlite3"
	appDir     = "calterm"
)

// Backend kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindDiskv  = "diskv"
	KindMemory = "memory"
)

// ErrUnknownBackend indicates an unsupported storage kind.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend is a synchronous key-value store holding string blobs.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Open returns the backend of the given kind rooted at dir. An empty dir
// resolves to the user config directory.
func Open(ctx context.Context, kind, dir string) (Backend, error) {
	if kind == KindMemory {
		return NewMemory(), nil
	}
	if dir == "" {
		resolved, err := resolveDataDir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	switch kind {
	case KindSQLite, "":
		return OpenSQLite(ctx, filepath.Join(dir, "calterm.db"))
	case KindDiskv:
		return OpenDiskv(filepath.Join(dir, "kv")), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}

// SQLite stores blobs in a single kv table.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite bootstraps the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLite{db: db, path: path}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases DB resources.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file.
func (s *SQLite) Path() string {
	return s.path
}

func resolveDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.Getenv("HOME")
		if base == "" {
			return "", fmt.Errorf("cannot resolve data dir: %w", err)
		}
	}
	return filepath.Join(base, appDir), nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )`,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// Get reads the value stored under key.
func (s *SQLite) Get(key string) (string, bool, error) {
	return s.GetContext(context.Background(), key)
}

// GetContext reads the value stored under key.
func (s *SQLite) GetContext(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key, replacing any previous value.
func (s *SQLite) Set(key, value string) error {
	return s.SetContext(context.Background(), key, value)
}

// SetContext writes value under key, replacing any previous value.
func (s *SQLite) SetContext(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
