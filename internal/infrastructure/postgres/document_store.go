package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/metrics"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const documentColumns = "id, collection, data, version, created_at, updated_at"

// DocumentStore implements repository.DocumentStore on a single JSONB table.
// Every document is scoped to one database id.
type DocumentStore struct {
	db         DBTX
	databaseID string
	now        func() time.Time
}

// NewDocumentStore creates a new DocumentStore instance.
func NewDocumentStore(db DBTX, databaseID string) *DocumentStore {
	return &DocumentStore{db: db, databaseID: databaseID, now: time.Now}
}

// Create persists a new document.
func (s *DocumentStore) Create(ctx context.Context, collection, id string, data map[string]any) (*model.Document, error) {
	const query = `
		INSERT INTO documents (database_id, collection, id, data, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5, $5)
		RETURNING ` + documentColumns

	payload, err := encodeData(data)
	if err != nil {
		return nil, err
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryInsert, metrics.TableDocuments).Inc()
	doc, err := scanDocument(s.db.QueryRow(ctx, query, s.databaseID, collection, id, payload, s.now().UTC()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, repository.ErrDuplicateDocument
		}
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

// Get retrieves a document by id.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*model.Document, error) {
	const query = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE database_id = $1 AND collection = $2 AND id = $3
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableDocuments).Inc()
	doc, err := scanDocument(s.db.QueryRow(ctx, query, s.databaseID, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// List returns the documents of a collection matching every query.
func (s *DocumentStore) List(ctx context.Context, collection string, queries ...repository.Query) ([]*model.Document, error) {
	query, args, err := buildListQuery(s.databaseID, collection, queries)
	if err != nil {
		return nil, err
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableDocuments).Inc()
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*model.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

// Update merges data into the stored attributes and bumps the version.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, data map[string]any) (*model.Document, error) {
	const query = `
		UPDATE documents
		SET data = data || $4::jsonb, version = version + 1, updated_at = $5
		WHERE database_id = $1 AND collection = $2 AND id = $3
		RETURNING ` + documentColumns

	payload, err := encodeData(data)
	if err != nil {
		return nil, err
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableDocuments).Inc()
	doc, err := scanDocument(s.db.QueryRow(ctx, query, s.databaseID, collection, id, payload, s.now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return doc, nil
}

// UpdateIfVersion merges data only when the stored version still equals version.
func (s *DocumentStore) UpdateIfVersion(ctx context.Context, collection, id string, version int64, data map[string]any) (*model.Document, error) {
	const query = `
		UPDATE documents
		SET data = data || $4::jsonb, version = version + 1, updated_at = $5
		WHERE database_id = $1 AND collection = $2 AND id = $3 AND version = $6
		RETURNING ` + documentColumns

	payload, err := encodeData(data)
	if err != nil {
		return nil, err
	}

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryUpdate, metrics.TableDocuments).Inc()
	doc, err := scanDocument(s.db.QueryRow(ctx, query, s.databaseID, collection, id, payload, s.now().UTC(), version))
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	// No row matched: either the document is gone or someone else bumped the version.
	if _, err := s.currentVersion(ctx, collection, id); err != nil {
		return nil, err
	}
	return nil, repository.ErrVersionConflict
}

func (s *DocumentStore) currentVersion(ctx context.Context, collection, id string) (int64, error) {
	const query = `
		SELECT version
		FROM documents
		WHERE database_id = $1 AND collection = $2 AND id = $3
	`

	var version int64
	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQuerySelect, metrics.TableDocuments).Inc()
	if err := s.db.QueryRow(ctx, query, s.databaseID, collection, id).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrDocumentNotFound
		}
		return 0, fmt.Errorf("failed to read document version: %w", err)
	}
	return version, nil
}

// Delete removes a document.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	const query = `
		DELETE FROM documents
		WHERE database_id = $1 AND collection = $2 AND id = $3
	`

	metrics.DBQueriesTotal.WithLabelValues(metrics.DBQueryDelete, metrics.TableDocuments).Inc()
	tag, err := s.db.Exec(ctx, query, s.databaseID, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrDocumentNotFound
	}

	return nil
}

// buildListQuery translates list queries into SQL over the documents table.
// Attribute values are compared as text, the way data->>'field' renders them.
func buildListQuery(databaseID, collection string, queries []repository.Query) (string, []any, error) {
	var (
		sb     strings.Builder
		args   = []any{databaseID, collection}
		orders []string
		limit  = 0
	)

	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString("SELECT " + documentColumns + " FROM documents WHERE database_id = $1 AND collection = $2")

	for _, q := range queries {
		switch q.Kind {
		case repository.QueryEqual:
			if q.Field == "" {
				return "", nil, fmt.Errorf("equal query requires a field")
			}
			if q.Field == model.AttrID {
				fmt.Fprintf(&sb, " AND id = %s", next(textValue(q.Value)))
				continue
			}
			field := next(q.Field)
			fmt.Fprintf(&sb, " AND data->>%s = %s", field, next(textValue(q.Value)))
		case repository.QuerySearch:
			if q.Field == "" {
				return "", nil, fmt.Errorf("search query requires a field")
			}
			field := next(q.Field)
			fmt.Fprintf(&sb,
				" AND to_tsvector('simple', coalesce(data->>%s, '')) @@ plainto_tsquery('simple', %s)",
				field, next(textValue(q.Value)),
			)
		case repository.QueryOrderDesc:
			switch q.Field {
			case model.AttrCreatedAt:
				orders = append(orders, "created_at DESC")
			case model.AttrUpdatedAt:
				orders = append(orders, "updated_at DESC")
			case model.AttrID:
				orders = append(orders, "id DESC")
			case "":
				return "", nil, fmt.Errorf("order query requires a field")
			default:
				orders = append(orders, fmt.Sprintf("data->>%s DESC", next(q.Field)))
			}
		case repository.QueryLimit:
			if q.Limit < 1 {
				return "", nil, fmt.Errorf("limit must be positive, got %d", q.Limit)
			}
			limit = q.Limit
		default:
			return "", nil, fmt.Errorf("unsupported query kind %d", q.Kind)
		}
	}

	if len(orders) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}
	if limit > 0 {
		sb.WriteString(" LIMIT " + next(limit))
	}

	return sb.String(), args, nil
}

func textValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode document data: %w", err)
	}
	return string(payload), nil
}

func scanDocument(row pgx.Row) (*model.Document, error) {
	var (
		doc model.Document
		raw []byte
	)

	if err := row.Scan(&doc.ID, &doc.Collection, &raw, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}

	doc.Data = map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
		}
		if doc.Data == nil {
			doc.Data = map[string]any{}
		}
	}

	return &doc, nil
}

var _ repository.DocumentStore = (*DocumentStore)(nil)
