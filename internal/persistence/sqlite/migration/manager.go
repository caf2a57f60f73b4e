package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Manager brings a database up to the latest shipped version.
type Manager struct {
	scanner  Scanner
	executor Executor
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager wires a manager. A nil logger falls back to slog.Default.
func NewManager(scanner Scanner, executor Executor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{scanner: scanner, executor: executor, logger: logger, now: time.Now}
}

// Run applies every pending migration in version order and stops at the
// first failure.
func (m *Manager) Run(ctx context.Context) error {
	status, err := m.Status(ctx)
	if err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "schema status",
		slog.String("current_version", status.CurrentVersion),
		slog.Int("pending", len(status.Pending)),
	)

	for i, migration := range status.Pending {
		elapsed, err := m.executor.Apply(ctx, migration, m.now())
		if err != nil {
			m.logger.ErrorContext(ctx, "migration failed",
				slog.String("version", migration.Version),
				slog.String("file", migration.FilePath),
				slog.String("error", err.Error()),
			)
			return NewMigrationError(migration.Version, migration.FilePath, "execute migration",
				fmt.Errorf("%w: %w", ErrMigrationFailed, err))
		}
		m.logger.InfoContext(ctx, "migration applied",
			slog.String("version", migration.Version),
			slog.String("description", migration.Description),
			slog.Int("position", i+1),
			slog.Int("total", len(status.Pending)),
			slog.Duration("duration", elapsed),
		)
	}
	return nil
}

// Status compares the shipped migrations with the recorded ones. Applied
// files whose checksum changed, or recorded versions the binary does not
// ship, are reported as errors.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, fmt.Errorf("initialize version table: %w", err)
	}
	available, err := m.scanner.Scan()
	if err != nil {
		return Status{}, fmt.Errorf("scan migrations: %w", err)
	}
	applied, err := m.executor.Applied(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("list applied migrations: %w", err)
	}

	byVersion := make(map[int]Migration, len(available))
	for _, migration := range available {
		byVersion[versionNumber(migration.Version)] = migration
	}
	done := make(map[int]bool, len(applied))
	status := Status{Applied: applied}
	for _, row := range applied {
		number := versionNumber(row.Version)
		shipped, ok := byVersion[number]
		if !ok {
			return Status{}, NewMigrationError(row.Version, "", "verify applied", ErrUnknownVersion)
		}
		if row.Checksum != "" && row.Checksum != shipped.Checksum {
			return Status{}, NewMigrationError(row.Version, shipped.FilePath, "verify checksum", ErrChecksumMismatch)
		}
		done[number] = true
		status.CurrentVersion = row.Version
	}
	for _, migration := range available {
		if !done[versionNumber(migration.Version)] {
			status.Pending = append(status.Pending, migration)
		}
	}
	return status, nil
}
