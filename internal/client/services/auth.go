// Package services contains application services of the POS terminal.
// This file defines the authentication service: online login against the
// server, offline fallback to the last cached session, and liveness probe.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/client/client"
	"github.com/dmitrijs2005/posqueue/internal/client/models"
	"github.com/dmitrijs2005/posqueue/internal/common"
)

// SessionStore is the part of the local store that keeps cached sessions.
type SessionStore interface {
	CacheUser(ctx context.Context, u *models.CachedSession) error
	GetCachedUser(ctx context.Context, username string) (*models.CachedSession, error)
}

// AuthService defines authentication operations for the terminal.
//
// Contract:
//   - OnlineLogin: authenticate against the server and cache the session.
//   - OfflineLogin: return the cached session of username, if any.
//   - Login: OnlineLogin, falling back to OfflineLogin when the server does
//     not answer. Refused credentials never fall back.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	OnlineLogin(ctx context.Context, username string, password []byte) (*models.CachedSession, error)
	OfflineLogin(ctx context.Context, username string) (*models.CachedSession, error)
	Login(ctx context.Context, username string, password []byte) (s *models.CachedSession, offline bool, err error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  SessionStore
	now    func() time.Time
}

func NewAuthService(c client.Client, store SessionStore) AuthService {
	return &authService{client: c, store: store, now: time.Now}
}

// OnlineLogin authenticates against the server and overwrites the cached
// session of username. The password is not kept.
func (a *authService) OnlineLogin(ctx context.Context, username string, password []byte) (*models.CachedSession, error) {
	res, err := a.client.Login(ctx, username, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	s := &models.CachedSession{
		Username:    username,
		UserID:      res.UserID,
		DisplayName: res.DisplayName,
		CapturedAt:  a.now().UnixMilli(),
	}
	if err := a.store.CacheUser(ctx, s); err != nil {
		return nil, fmt.Errorf("session caching error: %w", err)
	}
	return s, nil
}

// OfflineLogin returns the last session captured for username. It grants no
// server access; it only restores who is at the till. Without a cached
// session it returns client.ErrLocalDataNotAvailable.
func (a *authService) OfflineLogin(ctx context.Context, username string) (*models.CachedSession, error) {
	s, err := a.store.GetCachedUser(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, client.ErrLocalDataNotAvailable
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.CachedSession, bool, error) {
	s, err := a.OnlineLogin(ctx, username, password)
	if err == nil {
		return s, false, nil
	}
	if !client.IsConnectivityError(err) {
		return nil, false, err
	}

	s, offErr := a.OfflineLogin(ctx, username)
	if offErr != nil {
		return nil, false, fmt.Errorf("%w (offline: %w)", err, offErr)
	}
	return s, true, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
