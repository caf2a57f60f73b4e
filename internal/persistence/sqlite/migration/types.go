package migration

import (
	"context"
	"time"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     string
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Status describes the schema state of a database.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}

// Scanner discovers the migrations shipped with the binary.
type Scanner interface {
	Scan() ([]Migration, error)
}

// Executor applies migrations to a database.
type Executor interface {
	InitializeVersionTable(ctx context.Context) error
	Apply(ctx context.Context, migration Migration, appliedAt time.Time) (time.Duration, error)
	Applied(ctx context.Context) ([]AppliedMigration, error)
}
