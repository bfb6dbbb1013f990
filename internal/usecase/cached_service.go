package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/aora/internal/domain/model"
	"github.com/hszk-dev/aora/internal/domain/repository"
	"github.com/hszk-dev/aora/internal/infrastructure/cache"
	"github.com/hszk-dev/aora/internal/infrastructure/metrics"
)

// CachedServiceConfig holds configuration for CachedService.
type CachedServiceConfig struct {
	// CacheTTL is the TTL for cached post lists.
	CacheTTL time.Duration
	// VideosCollection and LatestLimit must match the delegate so cache keys mirror its queries.
	VideosCollection string
	LatestLimit      int
}

// DefaultCachedServiceConfig returns the default configuration.
func DefaultCachedServiceConfig() CachedServiceConfig {
	return CachedServiceConfig{
		CacheTTL:         time.Minute,
		VideosCollection: "videos",
		LatestLimit:      7,
	}
}

// cachedService wraps Service with caching of the unfiltered post lists.
// It implements the decorator pattern to add caching without modifying the original service.
type cachedService struct {
	Service
	cache   cache.PostListCache
	sfGroup singleflight.Group

	cacheTTL  time.Duration
	allKey    string
	latestKey string
}

// NewCachedService creates a new Service caching GetAllPosts and GetLatestPosts.
func NewCachedService(delegate Service, postCache cache.PostListCache, cfg CachedServiceConfig) Service {
	defaults := DefaultCachedServiceConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.VideosCollection == "" {
		cfg.VideosCollection = defaults.VideosCollection
	}
	if cfg.LatestLimit < 1 {
		cfg.LatestLimit = defaults.LatestLimit
	}

	return &cachedService{
		Service:  delegate,
		cache:    postCache,
		cacheTTL: cfg.CacheTTL,
		allKey:   repository.QueryKey(cfg.VideosCollection),
		latestKey: repository.QueryKey(cfg.VideosCollection,
			repository.OrderDesc(model.AttrCreatedAt),
			repository.Limit(cfg.LatestLimit),
		),
	}
}

func (s *cachedService) GetAllPosts(ctx context.Context) ([]*model.Post, error) {
	return s.getPosts(ctx, s.allKey, s.Service.GetAllPosts)
}

func (s *cachedService) GetLatestPosts(ctx context.Context) ([]*model.Post, error) {
	return s.getPosts(ctx, s.latestKey, s.Service.GetLatestPosts)
}

// CreateVideoPost invalidates every cached list once the post exists.
func (s *cachedService) CreateVideoPost(ctx context.Context, form model.PostForm) (*model.Post, error) {
	post, err := s.Service.CreateVideoPost(ctx, form)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		// Log but don't fail - entries still expire after the TTL
		slog.Warn("failed to invalidate post list cache",
			"post_id", post.ID,
			"error", err,
		)
	}
	return post, nil
}

// getPosts uses singleflight to prevent cache stampede on concurrent requests for the same list.
func (s *cachedService) getPosts(ctx context.Context, key string, load func(context.Context) ([]*model.Post, error)) ([]*model.Post, error) {
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.getPostsWithCache(ctx, key, load)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	// Callers sharing a flight get their own slice header over the same posts.
	posts := result.([]*model.Post)
	out := make([]*model.Post, len(posts))
	copy(out, posts)
	return out, nil
}

// getPostsWithCache implements the cache-aside pattern.
func (s *cachedService) getPostsWithCache(ctx context.Context, key string, load func(context.Context) ([]*model.Post, error)) ([]*model.Post, error) {
	posts, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("cache get failed, falling back to store",
			"key", key,
			"error", err,
		)
	}
	if hit {
		return posts, nil
	}

	posts, err = load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, posts, s.cacheTTL); err != nil {
		slog.Warn("failed to cache post list",
			"key", key,
			"error", err,
		)
	}

	return posts, nil
}
