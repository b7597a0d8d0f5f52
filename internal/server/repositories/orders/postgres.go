// Package orders stores accepted orders in PostgreSQL.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/dbx"
	"github.com/dmitrijs2005/posqueue/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert relies on the unique client_ref constraint. The no-op update makes
// RETURNING yield the existing row; xmax is zero only for a fresh insert.
func (r *PostgresRepository) Upsert(ctx context.Context, order *models.Order) (string, bool, error) {
	query :=
		`INSERT INTO orders (id, user_id, client_ref, payload)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (client_ref) DO UPDATE SET client_ref = EXCLUDED.client_ref
		 RETURNING id, (xmax = 0) AS created
		 `

	var (
		id      string
		created bool
	)
	err := r.db.QueryRowContext(ctx, query,
		order.ID, order.UserID, order.ClientRef, []byte(order.Payload)).Scan(&id, &created)
	if err != nil {
		return "", false, fmt.Errorf("db error: %w", err)
	}

	return id, created, nil
}

func (r *PostgresRepository) GetByClientRef(ctx context.Context, clientRef string) (*models.Order, error) {
	query :=
		`SELECT id, user_id, client_ref, payload, created_at FROM orders
		 WHERE client_ref = $1
		 `

	o := &models.Order{}
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, clientRef).
		Scan(&o.ID, &o.UserID, &o.ClientRef, &payload, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	o.Payload = payload

	return o, nil
}
