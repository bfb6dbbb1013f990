package repository

import (
	"context"

	"github.com/hszk-dev/aora/internal/domain/model"
)

// DocumentStore defines the document-oriented persistence used for users and posts.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
type DocumentStore interface {
	// Create persists a new document with the given id.
	// Returns ErrDuplicateDocument if the id is taken.
	Create(ctx context.Context, collection, id string, data map[string]any) (*model.Document, error)

	// Get retrieves a document by id.
	// Returns ErrDocumentNotFound if it does not exist.
	Get(ctx context.Context, collection, id string) (*model.Document, error)

	// List returns documents matching every query.
	// Without an OrderDesc query the order is store-defined.
	List(ctx context.Context, collection string, queries ...Query) ([]*model.Document, error)

	// Update merges data into the stored attributes.
	// Returns ErrDocumentNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, data map[string]any) (*model.Document, error)

	// UpdateIfVersion merges data only when the stored version equals version.
	// Returns ErrVersionConflict when it does not, ErrDocumentNotFound when the document is gone.
	UpdateIfVersion(ctx context.Context, collection, id string, version int64, data map[string]any) (*model.Document, error)

	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error
}
