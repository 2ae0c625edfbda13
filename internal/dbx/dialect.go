package dbx

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// Dialect describes the SQL engine behind a *sql.DB. Repositories write
// their queries with '?' placeholders and rebind them per dialect.
type Dialect struct {
	Name         string
	Driver       string
	GooseDialect string
	bindType     int
	lower        string
}

// sqliteDriver is go-sqlite3 with a Unicode-aware ulower() on every
// connection; the built-in LOWER() folds ASCII only.
const sqliteDriver = "sqlite3_a2hand"

var (
	Postgres = Dialect{Name: "postgres", Driver: "pgx", GooseDialect: "pgx", bindType: sqlx.DOLLAR, lower: "LOWER(%s)"}
	SQLite   = Dialect{Name: "sqlite", Driver: sqliteDriver, GooseDialect: "sqlite3", bindType: sqlx.QUESTION, lower: "ulower(COALESCE(%s, ''))"}
)

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("ulower", strings.ToLower, true)
		},
	})
}

// Rebind rewrites '?' placeholders into the dialect's bindvar syntax.
func (d Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bindType, query)
}

// Lower wraps a column expression in the dialect's Unicode lower-casing,
// matching strings.ToLower on the Go side.
func (d Dialect) Lower(expr string) string {
	return strings.Replace(d.lower, "%s", expr, 1)
}

// SQLiteMaxOpenConns sizes the SQLite pool. WAL lets readers run alongside
// the single writer; writers queue on the immediate transaction lock.
const SQLiteMaxOpenConns = 8

// SQLiteDSN appends the per-connection settings every pooled SQLite
// connection needs: WAL, busy waiting and immediate write transactions.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL&_txlock=immediate"
}

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique/primary key constraint
// failure raised by either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}
