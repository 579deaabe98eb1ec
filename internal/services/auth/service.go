// Package auth signs merchants into the admin app.
package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrTokenRevoked       = errors.New("token version mismatch")
)

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Service interface {
	Login(ctx context.Context, email, password string) (*models.Account, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accountID uint) error
	TokenVersion(ctx context.Context, accountID uint) (int, error)
}

type service struct {
	accounts      repositories.AccountRepository
	jwtSecret     string
	refreshSecret string
	logger        *zap.Logger
	now           func() time.Time
}

func NewService(accounts repositories.AccountRepository, jwtSecret, refreshSecret string, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		accounts:      accounts,
		jwtSecret:     jwtSecret,
		refreshSecret: refreshSecret,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *service) Login(ctx context.Context, email, password string) (*models.Account, *TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Info("login failed: unknown email")
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		s.logger.Info("login failed: wrong password", zap.Uint("account_id", account.ID))
		return nil, nil, ErrInvalidCredentials
	}

	if account.Status != "" && account.Status != models.AccountStatusActive {
		return nil, nil, ErrAccountDisabled
	}

	tokens, err := s.issue(account)
	if err != nil {
		return nil, nil, err
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID, s.now()); err != nil {
		s.logger.Warn("failed to record last login", zap.Uint("account_id", account.ID), zap.Error(err))
	}
	return account, tokens, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ParseToken(refreshToken, utils.TokenRefresh, s.refreshSecret)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if account.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	return s.issue(account)
}

// Logout revokes every token issued to the account.
func (s *service) Logout(ctx context.Context, accountID uint) error {
	return s.accounts.IncrementTokenVersion(ctx, accountID)
}

func (s *service) TokenVersion(ctx context.Context, accountID uint) (int, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.TokenVersion, nil
}

func (s *service) issue(account *models.Account) (*TokenPair, error) {
	claims := models.AccountClaims{
		AccountID:    account.ID,
		ShopID:       account.ShopID,
		Email:        account.Email,
		Role:         account.Role,
		Permissions:  models.GetDefaultPermissions(account.Role),
		TokenVersion: account.TokenVersion,
	}

	now := s.now()
	access, err := utils.GenerateToken(claims, utils.TokenAccess, s.jwtSecret, utils.AccessTokenTTL, now)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateToken(claims, utils.TokenRefresh, s.refreshSecret, utils.RefreshTokenTTL, now)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// HashPassword hashes a merchant password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
