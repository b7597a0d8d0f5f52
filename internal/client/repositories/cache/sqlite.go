package cache

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
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Set(ctx context.Context, key string, value []byte, updatedAt int64) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	e := &models.CacheEntry{Key: key}
	err := r.db.QueryRowContext(ctx, `SELECT value, updated_at FROM cache WHERE key = ?`, key).Scan(&e.Value, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cache[%s]: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache[%s]: %w", key, err)
	}
	return e, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte, updatedAt int64) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to set cache[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cache`)
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
