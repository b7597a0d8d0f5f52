// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/posqueue/internal/dbx"
	"github.com/dmitrijs2005/posqueue/internal/server/migrations"
	"github.com/dmitrijs2005/posqueue/internal/server/repositories/orders"
	"github.com/dmitrijs2005/posqueue/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Orders returns an orders.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Orders(db dbx.DBTX) orders.Repository {
	return orders.NewPostgresRepository(db)
}

// migrateUp is a seam for testing the goose migration run.
var migrateUp = migrations.Up

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db)
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// Open connects to dsn through pgx and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
