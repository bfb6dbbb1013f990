package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/metrics"
)

// AccountRepository stores credential accounts.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create persists a new account together with its password hash.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account, passwordHash string) error {
	const query = `
		INSERT INTO accounts (id, email, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableAccounts).Inc()
	_, err := r.db.Exec(ctx, query,
		account.ID,
		account.Email,
		passwordHash,
		account.Name,
		account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByEmail returns the account and its password hash.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, string, error) {
	const query = `
		SELECT id, email, name, created_at, password_hash
		FROM accounts
		WHERE email = $1
	`

	var (
		account model.Account
		hash    string
	)

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableAccounts).Inc()
	err := r.db.QueryRow(ctx, query, email).Scan(&account.ID, &account.Email, &account.Name, &account.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", repository.ErrAccountNotFound
		}
		return nil, "", fmt.Errorf("failed to get account by email: %w", err)
	}

	return &account, hash, nil
}

// GetByID returns an account by id.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	const query = `
		SELECT id, email, name, created_at
		FROM accounts
		WHERE id = $1
	`

	var account model.Account

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableAccounts).Inc()
	err := r.db.QueryRow(ctx, query, id).Scan(&account.ID, &account.Email, &account.Name, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return &account, nil
}
