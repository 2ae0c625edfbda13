// Package repomanager vends repository implementations bound to a database
// handle and runs the goose schema migrations for the selected dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/logging"
	"github.com/dmitrijs2005/a2hand/internal/server/migrations"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/messages"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/products"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager builds dialect-aware repositories.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	logger  logging.Logger
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// Products returns a products.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Products(db dbx.DBTX) products.Repository {
	return products.NewSQLRepository(db, m.dialect)
}

// Messages returns a messages.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Messages(db dbx.DBTX) messages.Repository {
	return messages.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations for the manager's
// dialect and applies every pending step. Safe to run on every start.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(&gooseLogger{ctx: ctx, log: m.logger})
	if err := goose.SetDialect(m.dialect.GooseDialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.dialect.Name); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect.
func NewSQLRepositoryManager(dialect dbx.Dialect, logger logging.Logger) *SQLRepositoryManager {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &SQLRepositoryManager{dialect: dialect, logger: logger}
}

type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.log.Info(l.ctx, "migrations", "detail", fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(l.ctx, "migrations", "detail", fmt.Sprintf(format, v...))
}
