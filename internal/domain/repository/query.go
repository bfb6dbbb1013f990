package repository

import (
	"fmt"
	"strings"
)

// QueryKind identifies a list filter, ordering or cap.
type QueryKind int

const (
	QueryEqual QueryKind = iota + 1
	QuerySearch
	QueryOrderDesc
	QueryLimit
)

// Query is one clause of a List call. Build it with Equal, Search, OrderDesc or Limit.
type Query struct {
	Kind  QueryKind
	Field string
	Value any
	Limit int
}

// Equal matches documents whose attribute equals value.
func Equal(field string, value any) Query {
	return Query{Kind: QueryEqual, Field: field, Value: value}
}

// Search performs a full-text match of term against the attribute.
func Search(field, term string) Query {
	return Query{Kind: QuerySearch, Field: field, Value: term}
}

// OrderDesc sorts by the attribute, newest or largest first.
func OrderDesc(field string) Query {
	return Query{Kind: QueryOrderDesc, Field: field}
}

// Limit caps the number of returned documents.
func Limit(n int) Query {
	return Query{Kind: QueryLimit, Limit: n}
}

func (q Query) String() string {
	switch q.Kind {
	case QueryEqual:
		return fmt.Sprintf("equal(%s,%v)", q.Field, q.Value)
	case QuerySearch:
		return fmt.Sprintf("search(%s,%v)", q.Field, q.Value)
	case QueryOrderDesc:
		return fmt.Sprintf("orderDesc(%s)", q.Field)
	case QueryLimit:
		return fmt.Sprintf("limit(%d)", q.Limit)
	default:
		return "unknown"
	}
}

// QueryKey renders queries into a stable key, used for caching list results.
func QueryKey(collection string, queries ...Query) string {
	parts := make([]string, 0, len(queries)+1)
	parts = append(parts, collection)
	for _, q := range queries {
		parts = append(parts, q.String())
	}
	return strings.Join(parts, "|")
}
