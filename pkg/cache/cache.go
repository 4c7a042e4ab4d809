package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs
const (
	TTLArticle = 5 * time.Minute
	TTLDefault = 5 * time.Minute
)

// Key prefixes
const (
	PrefixArticle = "article:"
)

// ErrMiss is returned by Get when the key is absent or the cache is disabled
var ErrMiss = errors.New("cache miss")

// Service read-through cache for rendered API payloads
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetArticle(ctx context.Context, id uint64, dest interface{}) error
	SetArticle(ctx context.Context, id uint64, data interface{}) error
	InvalidateArticle(ctx context.Context, id uint64) error

	IsAvailable() bool
}

// redisCache Redis-backed cache; a nil client disables caching
type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service. client may be nil.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether Redis is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Get reads key into dest
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores value under key for ttl
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // no Redis, nothing to do
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func articleKey(id uint64) string {
	return fmt.Sprintf("%s%d", PrefixArticle, id)
}

// GetArticle reads a cached article payload
func (c *redisCache) GetArticle(ctx context.Context, id uint64, dest interface{}) error {
	return c.Get(ctx, articleKey(id), dest)
}

// SetArticle caches an article payload
func (c *redisCache) SetArticle(ctx context.Context, id uint64, data interface{}) error {
	return c.Set(ctx, articleKey(id), data, TTLArticle)
}

// InvalidateArticle drops a cached article
func (c *redisCache) InvalidateArticle(ctx context.Context, id uint64) error {
	return c.Delete(ctx, articleKey(id))
}
