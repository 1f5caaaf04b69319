package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStaleWindow is how long an expired entry stays in Redis for revalidation.
const DefaultStaleWindow = 24 * time.Hour

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// ResponseCache stores raw PokeAPI responses in Redis.
type ResponseCache struct {
	redis       *redis.Client
	staleWindow time.Duration
}

// NewResponseCache creates a response cache with Redis backend.
// Entries are kept for staleWindow past their expiry so they can be revalidated.
func NewResponseCache(redisClient *redis.Client, staleWindow time.Duration) *ResponseCache {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if staleWindow < 0 {
		staleWindow = 0
	}
	return &ResponseCache{
		redis:       redisClient,
		staleWindow: staleWindow,
	}
}

// Get retrieves an entry by key. Expired entries still inside the stale
// window are returned; callers check IsExpired to decide on revalidation.
// Returns ErrCacheMiss if the key doesn't exist.
func (c *ResponseCache) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := c.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			ResponseCacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		ResponseCacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		ResponseCacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		if !entry.CanRevalidate() {
			_ = c.Delete(ctx, key)
			ResponseCacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		ResponseCacheHits.WithLabelValues("stale").Inc()
	} else {
		ResponseCacheHits.WithLabelValues("fresh").Inc()
	}

	return &entry, nil
}

// Set stores an entry. The Redis TTL is the entry's freshness plus the stale window.
func (c *ResponseCache) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if entry.CanRevalidate() {
		ttl += c.staleWindow
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		ResponseCacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := c.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		ResponseCacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes an entry.
func (c *ResponseCache) Delete(ctx context.Context, key Key) error {
	if err := c.redis.Del(ctx, key.String()).Err(); err != nil {
		ResponseCacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Refresh extends an entry's expiry after a 304 Not Modified.
func (c *ResponseCache) Refresh(ctx context.Context, key Key, entry *Entry, expires time.Time) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	refreshed := *entry
	refreshed.Expires = expires
	return c.Set(ctx, key, &refreshed)
}
