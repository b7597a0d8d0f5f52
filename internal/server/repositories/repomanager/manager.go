package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/posqueue/internal/dbx"
	"github.com/dmitrijs2005/posqueue/internal/server/repositories/orders"
	"github.com/dmitrijs2005/posqueue/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Orders(db dbx.DBTX) orders.Repository
}
