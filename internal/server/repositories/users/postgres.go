// Package users stores intake accounts in PostgreSQL.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/dbx"
	"github.com/dmitrijs2005/posqueue/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user with its pre-generated ID. A taken username gives
// common.ErrDuplicateKey.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, display_name, password_hash)
         VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.DisplayName, user.PasswordHash).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrDuplicateKey
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, display_name, password_hash, created_at FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userName).
		Scan(&user.ID, &user.UserName, &user.DisplayName, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
