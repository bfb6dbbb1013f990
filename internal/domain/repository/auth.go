package repository

import (
	"context"

	"github.com/hszk-dev/aora/internal/domain/model"
)

// AuthService is the remote account and session service.
type AuthService interface {
	// CreateAccount registers a new account. Returns ErrAccountExists on a taken email.
	CreateAccount(ctx context.Context, id, email, password, name string) (*model.Account, error)

	// CreateEmailPasswordSession signs in and returns a new session.
	// Returns ErrInvalidCredentials on mismatch.
	CreateEmailPasswordSession(ctx context.Context, email, password string) (*model.Session, error)

	// DeleteSession revokes the session identified by token.
	DeleteSession(ctx context.Context, token string) error

	// GetAccount returns the account behind token. Returns ErrUnauthorized if the token is
	// missing, invalid, expired or revoked.
	GetAccount(ctx context.Context, token string) (*model.Account, error)
}

// Avatars derives avatar images for users.
type Avatars interface {
	// InitialsURL returns a deterministic URL of an image showing name's initials.
	InitialsURL(name string) string
}
