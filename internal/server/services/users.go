// Package services contains the intake server's business logic: account
// login and token checks in UserService, order acceptance in OrderService.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/common"
	"github.com/dmitrijs2005/posqueue/internal/server/auth"
	"github.com/dmitrijs2005/posqueue/internal/server/config"
	"github.com/dmitrijs2005/posqueue/internal/server/models"
	"github.com/dmitrijs2005/posqueue/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LoginResult is what a terminal receives after signing in.
type LoginResult struct {
	AccessToken string
	User        *models.User
}

// UserService verifies credentials and issues access tokens.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	hashCost                    int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		hashCost:                    bcrypt.DefaultCost,
	}
}

// compareMissingUser burns the same bcrypt work as a real comparison so an
// unknown username cannot be told apart by response time.
func (s *UserService) compareMissingUser(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("posqueue"), s.hashCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func (s *UserService) Login(ctx context.Context, userName, password string) (*LoginResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.compareMissingUser(password)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}

// Authenticate returns the user id carried by a valid access token.
func (s *UserService) Authenticate(accessToken string) (string, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

// EnsureUser creates the account unless the username is already taken. It
// reports whether an account was created. Existing passwords are not reset.
func (s *UserService) EnsureUser(ctx context.Context, userName, password, displayName string) (bool, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByLogin(ctx, userName)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return false, err
	}
	if displayName == "" {
		displayName = userName
	}

	_, err = repo.Create(ctx, &models.User{
		ID:           id.String(),
		UserName:     userName,
		DisplayName:  displayName,
		PasswordHash: hash,
	})
	if errors.Is(err, common.ErrDuplicateKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error creating user: %w", err)
	}
	return true, nil
}
