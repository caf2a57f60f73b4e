// Package sqlite implements the persistence repositories on SQLite through
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/interview-engine/internal/persistence/sqlite/migration"
)

// Storage is the SQLite-backed implementation of the persistence interfaces.
type Storage struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper ErrorMapper
	logger *slog.Logger
}

// Option customises Storage.
type Option func(*Storage)

// WithLogger sets the logger used for migrations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open connects to dsn with the default connection settings.
func Open(dsn string, opts ...Option) (*Storage, error) {
	return OpenConfig(context.Background(), DefaultConfig(dsn), opts...)
}

// OpenConfig connects with explicit settings.
func OpenConfig(ctx context.Context, config Config, opts ...Option) (*Storage, error) {
	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}
	s := &Storage{
		pool:   pool,
		retry:  NewRetryHelper(DefaultRetryConfig()),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	return s.migrations().Run(ctx)
}

// MigrationStatus reports applied and pending migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (migration.Status, error) {
	return s.migrations().Status(ctx)
}

func (s *Storage) migrations() *migration.Manager {
	return migration.NewManager(
		migration.NewScanner(migration.Files, "sql"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
}
