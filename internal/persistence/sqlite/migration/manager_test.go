package migration

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerAppliesEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	manager := NewManager(NewScanner(Files, "sql"), NewSQLiteExecutor(db), quietLogger())

	require.NoError(t, manager.Run(ctx))
	require.NoError(t, manager.Run(ctx), "second run is a no-op")

	status, err := manager.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status.Pending)
	assert.Equal(t, "002", status.CurrentVersion)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interviews`).Scan(&count))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interview_transitions`).Scan(&count))
}

func TestManagerStopsAtFailingMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/001_ok.sql":     {Data: []byte("CREATE TABLE ok (id TEXT);")},
		"sql/002_broken.sql": {Data: []byte("CREATE TABLE broken (id TEXT); INSERT INTO missing VALUES (1);")},
		"sql/003_later.sql":  {Data: []byte("CREATE TABLE later (id TEXT);")},
	}
	manager := NewManager(NewScanner(fsys, "sql"), NewSQLiteExecutor(db), quietLogger())

	err := manager.Run(ctx)
	require.ErrorIs(t, err, ErrMigrationFailed)
	var migrationErr *MigrationError
	require.ErrorAs(t, err, &migrationErr)
	assert.Equal(t, "002", migrationErr.Version)

	status, err := manager.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "001", status.CurrentVersion)
	require.Len(t, status.Pending, 2)

	var name string
	err = db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE name = 'broken'`).Scan(&name)
	assert.ErrorIs(t, err, sql.ErrNoRows, "failed migration must roll back")
}

func TestManagerDetectsEditedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	original := fstest.MapFS{"sql/001_t.sql": {Data: []byte("CREATE TABLE t (id TEXT);")}}
	require.NoError(t, NewManager(NewScanner(original, "sql"), NewSQLiteExecutor(db), quietLogger()).Run(ctx))

	edited := fstest.MapFS{"sql/001_t.sql": {Data: []byte("CREATE TABLE t (id TEXT, extra TEXT);")}}
	_, err := NewManager(NewScanner(edited, "sql"), NewSQLiteExecutor(db), quietLogger()).Status(ctx)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = NewManager(NewScanner(fstest.MapFS{"sql/002_u.sql": {Data: []byte("SELECT 1;")}}, "sql"), NewSQLiteExecutor(db), quietLogger()).Status(ctx)
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
