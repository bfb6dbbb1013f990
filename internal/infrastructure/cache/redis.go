package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/aora/internal/domain/model"
)

const (
	// postListKeyPrefix is the prefix for post list cache keys in Redis.
	postListKeyPrefix = "posts:"

	// postListGenerationKey holds a counter that is part of every list key.
	// Bumping it orphans all cached lists at once; they then expire by TTL.
	postListGenerationKey = "posts:generation"
)

// postJSON is the JSON representation of a Post for caching.
// Using explicit struct avoids coupling to domain model's JSON tags.
type postJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Video     string `json:"video"`
	Prompt    string `json:"prompt"`
	CreatorID string `json:"creator_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// RedisPostListCache implements PostListCache using Redis as the backing store.
type RedisPostListCache struct {
	client *redis.Client
}

// NewRedisPostListCache creates a new Redis-backed post list cache.
func NewRedisPostListCache(client *redis.Client) *RedisPostListCache {
	return &RedisPostListCache{
		client: client,
	}
}

// Get retrieves a post list from Redis cache.
func (c *RedisPostListCache) Get(ctx context.Context, key string) ([]*model.Post, bool, error) {
	fullKey, err := c.buildKey(ctx, key)
	if err != nil {
		return nil, false, err
	}

	data, err := c.client.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	posts, err := c.deserialize(data)
	if err != nil {
		return nil, false, fmt.Errorf("deserialize posts: %w", err)
	}

	return posts, true, nil
}

// Set stores a post list in Redis cache with the specified TTL.
func (c *RedisPostListCache) Set(ctx context.Context, key string, posts []*model.Post, ttl time.Duration) error {
	fullKey, err := c.buildKey(ctx, key)
	if err != nil {
		return err
	}

	data, err := c.serialize(posts)
	if err != nil {
		return fmt.Errorf("serialize posts: %w", err)
	}

	if err := c.client.Set(ctx, fullKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Invalidate bumps the generation so every previously cached list becomes unreachable.
func (c *RedisPostListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, postListGenerationKey).Err(); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	return nil
}

// buildKey constructs the Redis key for a list under the current generation.
func (c *RedisPostListCache) buildKey(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, postListGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get generation: %w", err)
	}
	return fmt.Sprintf("%s%d:%s", postListKeyPrefix, gen, key), nil
}

// serialize converts posts to JSON bytes.
func (c *RedisPostListCache) serialize(posts []*model.Post) ([]byte, error) {
	out := make([]postJSON, 0, len(posts))
	for _, p := range posts {
		out = append(out, postJSON{
			ID:        p.ID,
			Title:     p.Title,
			Thumbnail: p.Thumbnail,
			Video:     p.Video,
			Prompt:    p.Prompt,
			CreatorID: p.CreatorID,
			CreatedAt: p.CreatedAt.Format(time.RFC3339Nano),
			UpdatedAt: p.UpdatedAt.Format(time.RFC3339Nano),
		})
	}
	return json.Marshal(out)
}

// deserialize converts JSON bytes to posts.
func (c *RedisPostListCache) deserialize(data []byte) ([]*model.Post, error) {
	var in []postJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}

	posts := make([]*model.Post, 0, len(in))
	for _, v := range in {
		createdAt, err := time.Parse(time.RFC3339Nano, v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}

		updatedAt, err := time.Parse(time.RFC3339Nano, v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}

		posts = append(posts, &model.Post{
			ID:        v.ID,
			Title:     v.Title,
			Thumbnail: v.Thumbnail,
			Video:     v.Video,
			Prompt:    v.Prompt,
			CreatorID: v.CreatorID,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}

	return posts, nil
}

var _ PostListCache = (*RedisPostListCache)(nil)
