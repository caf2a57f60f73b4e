// Package migration applies versioned SQL files to the interview database.
//
// Files follow the {version}_{description}.sql convention (for example
// "001_create_interviews.sql") and are embedded into the binary. Applied
// versions are tracked in the schema_migrations table; each file runs in its
// own transaction together with its bookkeeping row.
//
//	manager := migration.NewManager(migration.NewScanner(migration.Files, "sql"), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.Run(ctx); err != nil {
//		return err
//	}
package migration
