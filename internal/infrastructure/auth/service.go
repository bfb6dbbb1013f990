// Package auth implements email/password accounts and bearer sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
)

// AccountStore persists accounts and their password hashes.
type AccountStore interface {
	Create(ctx context.Context, account *model.Account, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*model.Account, string, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
}

// SessionStore persists issued sessions.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// Config holds signing and lifetime settings.
type Config struct {
	Secret     []byte
	SessionTTL time.Duration
	// Issuer and Audience are stamped on every token and required when validating.
	Issuer   string
	Audience string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Service implements repository.AuthService.
type Service struct {
	accounts AccountStore
	sessions SessionStore
	cfg      Config
	now      func() time.Time
}

// NewService creates a new auth Service.
func NewService(accounts AccountStore, sessions SessionStore, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth secret is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &Service{
		accounts: accounts,
		sessions: sessions,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// CreateAccount registers a new credential account.
func (s *Service) CreateAccount(ctx context.Context, id, email, password, name string) (*model.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, repository.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: s.now().UTC(),
	}

	if err := s.accounts.Create(ctx, account, string(hash)); err != nil {
		return nil, err
	}

	return account, nil
}

// CreateEmailPasswordSession verifies credentials and issues a session token.
func (s *Service) CreateEmailPasswordSession(ctx context.Context, email, password string) (*model.Session, error) {
	account, hash, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, repository.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, repository.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &model.Session{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	token, err := s.sign(session)
	if err != nil {
		return nil, err
	}
	session.Token = token

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession revokes the session behind token. Expired tokens can still be revoked.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return repository.ErrUnauthorized
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return repository.ErrUnauthorized
		}
		return err
	}

	return nil
}

// GetAccount resolves the account behind a live session token.
func (s *Service) GetAccount(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, repository.ErrUnauthorized
	}

	claims, err := s.parse(token,
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, repository.ErrUnauthorized
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, repository.ErrUnauthorized
		}
		return nil, err
	}
	if session.AccountID != claims.Subject || session.Expired(s.now()) {
		return nil, repository.ErrUnauthorized
	}

	account, err := s.accounts.GetByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, repository.ErrUnauthorized
		}
		return nil, err
	}

	return account, nil
}

func (s *Service) sign(session *model.Session) (string, error) {
	claims := sessionClaims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.AccountID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *Service) parse(token string, opts ...jwt.ParserOption) (*sessionClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, errors.New("token has no session id")
	}
	return &claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ repository.AuthService = (*Service)(nil)
