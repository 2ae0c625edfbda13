// Package repotest opens throwaway SQLite stores with the full schema for
// repository and service tests.
package repotest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// OpenSQLite returns a migrated database file under t.TempDir, pooled the
// same way as production stores.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open(dbx.SQLite.Driver, dbx.SQLiteDSN(filepath.Join(t.TempDir(), "a2hand.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(dbx.SQLiteMaxOpenConns)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dbx.SQLite.GooseDialect); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}
	if err := goose.UpContext(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}
