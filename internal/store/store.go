package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/abhisek/phishdrill/internal/attempts"
	"github.com/abhisek/phishdrill/internal/content"
	"github.com/abhisek/phishdrill/internal/difficulty"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
	now func() time.Time
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serializes writers and keeps in-memory databases alive.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	if err := migrate(ctx, drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(ctx, db)
	if err != nil {
		drv.Close()
		return nil, err
	}

	return &Store{db: db, drv: drv, seq: seq, now: time.Now}, nil
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Items returns an ItemRepo outside any transaction.
func (s *Store) Items() *ItemRepo {
	return &ItemRepo{q: s.db, now: s.now}
}

// States returns a StateRepo outside any transaction.
func (s *Store) States() *StateRepo {
	return &StateRepo{q: s.db}
}

// Attempts returns an AttemptRepo outside any transaction.
func (s *Store) Attempts() *AttemptRepo {
	return &AttemptRepo{q: s.db, seq: s.seq}
}

// RunInTx runs fn inside one SQLite transaction. The transaction commits
// only if fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, states difficulty.StateStore, log attempts.Log) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &StateRepo{q: tx}, &AttemptRepo{q: tx, seq: s.seq})
	})
}

// ImportItems validates and upserts items in one transaction. Either all
// items are stored or none are.
func (s *Store) ImportItems(ctx context.Context, items []*content.Item) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		repo := &ItemRepo{q: tx, now: s.now}
		for _, it := range items {
			if err := repo.Put(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
}

// ResetUser deletes the user's state and attempt history. It returns the
// number of attempts removed.
func (s *Store) ResetUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := (&StateRepo{q: tx}).Delete(ctx, userID); err != nil {
			return err
		}
		var err error
		n, err = (&AttemptRepo{q: tx, seq: s.seq}).DeleteUser(ctx, userID)
		return err
	})
	return n, err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. PHISHDRILL_DB environment variable
// 2. $XDG_DATA_HOME/phishdrill/phishdrill.db
// 3. ~/.local/share/phishdrill/phishdrill.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PHISHDRILL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "phishdrill", "phishdrill.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
