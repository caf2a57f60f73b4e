package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLiteExecutor applies migrations to a SQLite database.
type SQLiteExecutor struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteExecutor creates a new SQLite migration executor.
func NewSQLiteExecutor(db *sql.DB) *SQLiteExecutor {
	return &SQLiteExecutor{db: db, now: time.Now}
}

// InitializeVersionTable creates schema_migrations if it does not exist.
func (e *SQLiteExecutor) InitializeVersionTable(ctx context.Context) error {
	const createTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT NOT NULL DEFAULT '',
			execution_time_ms INTEGER NOT NULL DEFAULT 0
		)`
	if _, err := e.db.ExecContext(ctx, createTable); err != nil {
		return &DatabaseError{Operation: "create schema_migrations table", Err: err}
	}
	return nil
}

// Apply runs every statement of migration and records it, all in one transaction.
func (e *SQLiteExecutor) Apply(ctx context.Context, migration Migration, appliedAt time.Time) (elapsed time.Duration, err error) {
	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return 0, NewMigrationError(migration.Version, migration.FilePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &DatabaseError{Version: migration.Version, Operation: "begin transaction", Err: err}
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	start := e.now()
	for i, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return 0, &DatabaseError{Version: migration.Version, Operation: fmt.Sprintf("execute statement %d", i+1), Err: err}
		}
	}
	elapsed = e.now().Sub(start)

	const record = `INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms) VALUES (?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, record, migration.Version, appliedAt.UTC().Format(time.RFC3339Nano), migration.Checksum, elapsed.Milliseconds()); err != nil {
		return 0, &DatabaseError{Version: migration.Version, Operation: "record migration", Err: err}
	}
	if err = tx.Commit(); err != nil {
		return 0, &DatabaseError{Version: migration.Version, Operation: "commit transaction", Err: err}
	}
	return elapsed, nil
}

// Applied lists recorded migrations in version order.
func (e *SQLiteExecutor) Applied(ctx context.Context) ([]AppliedMigration, error) {
	const query = `SELECT version, applied_at, checksum, execution_time_ms FROM schema_migrations ORDER BY CAST(version AS INTEGER)`
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &DatabaseError{Operation: "list applied migrations", Err: err}
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			row       AppliedMigration
			appliedAt string
			elapsedMS int64
		)
		if err := rows.Scan(&row.Version, &appliedAt, &row.Checksum, &elapsedMS); err != nil {
			return nil, &DatabaseError{Operation: "scan applied migration", Err: err}
		}
		if row.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt); err != nil {
			return nil, &DatabaseError{Version: row.Version, Operation: "parse applied_at", Err: err}
		}
		row.ExecutionTime = time.Duration(elapsedMS) * time.Millisecond
		applied = append(applied, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &DatabaseError{Operation: "iterate applied migrations", Err: err}
	}
	return applied, nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// splitStatements splits on semicolons and drops comment-only lines. The
// shipped migrations contain no semicolons inside literals or triggers.
func splitStatements(content string) []string {
	var statements []string
	for _, raw := range strings.Split(content, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			statements = append(statements, strings.Join(lines, "\n"))
		}
	}
	return statements
}
