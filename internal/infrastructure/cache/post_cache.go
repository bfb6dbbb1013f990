package cache

import (
	"context"
	"time"

	"github.com/hszk-dev/aora/internal/domain/model"
)

// PostListCache caches post list results keyed by their query.
// Implementations should handle serialization/deserialization transparently.
type PostListCache interface {
	// Get retrieves a cached list. hit is false on a cache miss.
	// An empty cached list is a hit.
	Get(ctx context.Context, key string) (posts []*model.Post, hit bool, err error)

	// Set stores a list with the specified TTL.
	Set(ctx context.Context, key string, posts []*model.Post, ttl time.Duration) error

	// Invalidate drops every cached list.
	Invalidate(ctx context.Context) error
}
