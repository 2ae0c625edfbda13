package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/filex"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// ParseDSN picks the dialect from the DSN scheme and returns the
// driver-level data source name.
//
//	postgres://..., postgresql://...   PostgreSQL via pgx
//	sqlite://path, file:..., :memory:  SQLite via go-sqlite3
func ParseDSN(dsn string) (dbx.Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return dbx.Postgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return dbx.Dialect{}, "", fmt.Errorf("empty sqlite path in dsn")
		}
		return dbx.SQLite, path, nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return dbx.SQLite, dsn, nil
	default:
		return dbx.Dialect{}, "", fmt.Errorf("unsupported database dsn scheme: %q", dsn)
	}
}

// Open connects to the store named by dsn. SQLite stores run in WAL mode
// with a small pool: reads proceed concurrently while write transactions
// start IMMEDIATE and wait on busy_timeout for the single writer lock.
func Open(ctx context.Context, dsn string) (*sql.DB, dbx.Dialect, error) {
	dialect, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, dbx.Dialect{}, err
	}

	if dialect == dbx.SQLite && !strings.HasPrefix(source, "file:") && source != ":memory:" {
		if dir := filepath.Dir(source); dir != "." {
			if _, err := filex.EnsureDir(dir); err != nil {
				return nil, dbx.Dialect{}, err
			}
		}
	}

	memory := source == ":memory:" || strings.Contains(source, "mode=memory")
	if dialect == dbx.SQLite {
		source = dbx.SQLiteDSN(source)
	}

	db, err := sql.Open(dialect.Driver, source)
	if err != nil {
		return nil, dbx.Dialect{}, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == dbx.SQLite {
		// every connection to an in-memory store is a separate database
		if memory {
			db.SetMaxOpenConns(1)
		} else {
			db.SetMaxOpenConns(dbx.SQLiteMaxOpenConns)
		}
		db.SetMaxIdleConns(2)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dbx.Dialect{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, dialect, nil
}
