package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/common"
)

// CacheUser stores (or replaces) the last known session of a user.
func (s *Store) CacheUser(ctx context.Context, u *models.CachedSession) error {
	if u == nil || u.Username == "" {
		return fmt.Errorf("username is required: %w", common.ErrValidation)
	}
	return s.withDB(func() error {
		return s.sessions.Upsert(ctx, u)
	})
}

func (s *Store) GetCachedUser(ctx context.Context, username string) (*models.CachedSession, error) {
	var out *models.CachedSession
	err := s.withDB(func() (err error) {
		out, err = s.sessions.Get(ctx, username)
		return err
	})
	return out, err
}

func (s *Store) SetCacheItem(ctx context.Context, key string, value []byte) error {
	return s.withDB(func() error {
		return s.cache.Set(ctx, key, value, s.millis(s.now()))
	})
}

func (s *Store) GetCacheItem(ctx context.Context, key string) (*models.CacheEntry, error) {
	var out *models.CacheEntry
	err := s.withDB(func() (err error) {
		out, err = s.cache.Get(ctx, key)
		return err
	})
	return out, err
}

func (s *Store) DeleteCacheItem(ctx context.Context, key string) error {
	return s.withDB(func() error {
		return s.cache.Delete(ctx, key)
	})
}

// ClearCache empties the key/value cache. Orders and sessions are kept.
func (s *Store) ClearCache(ctx context.Context) error {
	return s.withDB(func() error {
		return s.cache.Clear(ctx)
	})
}
