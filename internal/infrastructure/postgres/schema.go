package postgres

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		database_id TEXT        NOT NULL,
		collection  TEXT        NOT NULL,
		id          TEXT        NOT NULL,
		data        JSONB       NOT NULL DEFAULT '{}'::jsonb,
		version     BIGINT      NOT NULL DEFAULT 1,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (database_id, collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_created_at_idx
		ON documents (database_id, collection, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS documents_title_fts_idx
		ON documents USING GIN (to_tsvector('simple', coalesce(data->>'title', '')))`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		email         TEXT        NOT NULL UNIQUE,
		password_hash TEXT        NOT NULL,
		name          TEXT        NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		account_id TEXT        NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema statements in order. Every statement is idempotent.
func Migrate(ctx context.Context, db DBTX) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
