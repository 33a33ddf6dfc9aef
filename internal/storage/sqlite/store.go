// Package sqlite provides SQLite-backed persistence for resolution storage.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/platform/storage/sqlitemigrate"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// defaultScore is the initial score for an axis a character has never been
// scored on. Kept in the middle of the [0,1] band so early interactions can
// move it in either direction.
const defaultScore = 0.5

// Store provides SQLite-backed persistence implementing the storage interfaces.
type Store struct {
	sqlDB        *sql.DB
	defaultScore float64
}

// Option configures store behavior.
type Option func(*Store)

// WithDefaultScore overrides the initial score for unscored axes.
// The value should match the resolution grammar's default so reads and
// materialized writes agree on the starting point.
func WithDefaultScore(score float64) Option {
	return func(s *Store) {
		s.defaultScore = score
	}
}

// Open opens and migrates a resolution SQLite store at the provided path.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, defaultScore: defaultScore}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
