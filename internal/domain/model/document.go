package model

import "time"

// Reserved attribute names understood by the document store.
const (
	AttrID        = "$id"
	AttrCreatedAt = "$createdAt"
	AttrUpdatedAt = "$updatedAt"
)

// Document is a raw record as returned by the document store.
// Data holds the user-defined attributes in their decoded JSON form.
type Document struct {
	ID         string
	Collection string
	Data       map[string]any
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
