// Package migrations holds the goose schema history for both supported
// engines. SQL steps live in one directory per engine; additive column
// changes are Go steps shared by both, because they must inspect the
// existing table before altering it.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

func init() {
	goose.AddNamedMigrationContext("00002_add_product_currency.go", addProductCurrency, noop)
	goose.AddNamedMigrationContext("00003_add_message_attachment.go", addMessageAttachment, noop)
}

func addProductCurrency(ctx context.Context, tx *sql.Tx) error {
	return addColumnIfMissing(ctx, tx, "products", "currency", "TEXT NOT NULL DEFAULT 'EUR'")
}

func addMessageAttachment(ctx context.Context, tx *sql.Tx) error {
	return addColumnIfMissing(ctx, tx, "messages", "file_path", "TEXT")
}

// Added columns are never dropped on the way down.
func noop(context.Context, *sql.Tx) error { return nil }

func addColumnIfMissing(ctx context.Context, tx *sql.Tx, table, column, definition string) error {
	columns, err := Columns(ctx, tx, table)
	if err != nil {
		return err
	}
	if slices.Contains(columns, column) {
		return nil
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("add %s.%s: %w", table, column, err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Columns lists the lower-cased column names of table.
func Columns(ctx context.Context, q queryer, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", table))
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	for i, c := range columns {
		columns[i] = strings.ToLower(c)
	}
	return columns, rows.Err()
}
