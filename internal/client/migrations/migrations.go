// Package migrations embeds the goose migrations of the terminal's local
// SQLite store.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// Up applies every pending migration to db. A goose Provider is used instead
// of the package-level goose API so concurrent stores (and parallel tests)
// do not share dialect or filesystem state.
func Up(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
