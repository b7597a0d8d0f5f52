package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/migrations"
	"github.com/dmitrijs2005/posqueue/internal/client/repositories/cache"
	"github.com/dmitrijs2005/posqueue/internal/client/repositories/orders"
	"github.com/dmitrijs2005/posqueue/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/logging"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = FULL",
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source used for synced_at and cache timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	dsn    string
	logger logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	db       *sql.DB
	orders   orders.Repository
	sessions sessions.Repository
	cache    cache.Repository
}

// New returns an uninitialized store for the SQLite database at dsn (a file
// path or a modernc.org/sqlite DSN).
func New(dsn string, opts ...Option) *Store {
	s := &Store{
		dsn:    dsn,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "store")
	return s
}

// Initialize opens the database, creating it on first run, and applies
// pending migrations. Calling it on an initialized store is a no-op.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open(driverName, s.dsn)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	if err := prepare(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	s.db = db
	s.orders = orders.NewSQLiteRepository(db)
	s.sessions = sessions.NewSQLiteRepository(db)
	s.cache = cache.NewSQLiteRepository(db)

	s.logger.Info(ctx, "local store ready", "dsn", s.dsn)
	return nil
}

func prepare(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return migrations.Up(ctx, db)
}

// Close releases the database. The store can be initialized again afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.orders, s.sessions, s.cache = nil, nil, nil
	return err
}

// withDB runs fn while holding the read lock, so Close waits for in-flight
// operations.
func (s *Store) withDB(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return common.ErrNotInitialized
	}
	return fn()
}

func (s *Store) millis(t time.Time) int64 {
	return t.UnixMilli()
}
