package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/metrics"
)

// SessionRepository stores issued sessions. Tokens are not persisted, only session ids.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a session.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	const query = `
		INSERT INTO sessions (id, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableSessions).Inc()
	_, err := r.db.Exec(ctx, query, session.ID, session.AccountID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID returns a session by id.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	const query = `
		SELECT id, account_id, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`

	var session model.Session

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableSessions).Inc()
	err := r.db.QueryRow(ctx, query, id).Scan(&session.ID, &session.AccountID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// Delete revokes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableSessions).Inc()
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrSessionNotFound
	}

	return nil
}
