package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/a2hand/internal/dbx"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/messages"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/products"
	"github.com/dmitrijs2005/a2hand/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
	Messages(db dbx.DBTX) messages.Repository
	Dialect() dbx.Dialect
}
