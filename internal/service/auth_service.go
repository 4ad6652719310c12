package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/console-client/internal/auth"
	"github.com/spec-kit/console-client/internal/config"
	"github.com/spec-kit/console-client/internal/domain"
	"github.com/spec-kit/console-client/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountDisabled    = errors.New("account is not active")
)

const defaultDomainQuota = 1

// AuthService coordinates registration and login flows of the development backend.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.DevServerConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterUser creates a new end-user account.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password, inviteCode string) (*domain.Account, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Level:        domain.UserLevelNormal,
		Status:       domain.UserStatusActive,
		DomainQuota:  defaultDomainQuota,
		InviteCode:   inviteCode,
	}
	if err := s.users.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return account, nil
}

// EnsureAdmin creates the admin account if missing, or promotes an existing one.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.Account, error) {
	account, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		account, err = s.RegisterUser(ctx, username, email, password, "")
	}
	if err != nil {
		return nil, err
	}
	if account.IsAdmin {
		return account, nil
	}
	account.IsAdmin = true
	account.Level = domain.UserLevelLeader
	if err := s.users.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// LoginUser authenticates an end-user.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if account.Status != domain.UserStatusActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}
	token, exp, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// IssueToken signs a token for an existing account, as an OAuth callback would.
func (s *AuthService) IssueToken(ctx context.Context, id int64) (string, error) {
	account, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	token, _, err := s.tokenMgr.GenerateToken(account)
	return token, err
}

// RevokeTokens invalidates every token issued to the account so far.
func (s *AuthService) RevokeTokens(ctx context.Context, id int64) error {
	account, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	account.TokenVersion++
	return s.users.Update(ctx, account)
}

// SetAdmin grants or withdraws admin rights.
func (s *AuthService) SetAdmin(ctx context.Context, id int64, admin bool) error {
	account, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	account.IsAdmin = admin
	return s.users.Update(ctx, account)
}

// ListUsers returns every account ordered by id.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.Account, error) {
	return s.users.List(ctx)
}
