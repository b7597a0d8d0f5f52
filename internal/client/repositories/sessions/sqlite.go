// Package sessions keeps the last successful login per username so the
// terminal can show who is signed in while the server is unreachable.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/dbx"
)

type Repository interface {
	Upsert(ctx context.Context, s *models.CachedSession) error
	Get(ctx context.Context, username string) (*models.CachedSession, error)
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.CachedSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cached_users (username, user_id, display_name, captured_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			user_id = excluded.user_id,
			display_name = excluded.display_name,
			captured_at = excluded.captured_at
	`, s.Username, s.UserID, s.DisplayName, s.CapturedAt)
	if err != nil {
		return fmt.Errorf("failed to cache user %s: %w", s.Username, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, username string) (*models.CachedSession, error) {
	s := &models.CachedSession{}
	err := r.db.QueryRowContext(ctx, `
		SELECT username, user_id, display_name, captured_at FROM cached_users WHERE username = ?
	`, username).Scan(&s.Username, &s.UserID, &s.DisplayName, &s.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cached user %s: %w", username, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached user %s: %w", username, err)
	}
	return s, nil
}
