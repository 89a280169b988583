package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// AssetCache caches avatar image URLs keyed by avatar ID. It owns its own
// lifecycle: callers either take a synchronous miss via Get or fill the
// cache up front via Warm, and invalidate entries on demand.
type AssetCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewAssetCache creates an avatar asset cache on an existing Redis client.
func NewAssetCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *AssetCache {
	return &AssetCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// assetKey returns the Redis key for an avatar's image URL
func (c *AssetCache) assetKey(avatarID string) string {
	return fmt.Sprintf("avatar:%s:image", avatarID)
}

// Get returns the cached image URL for an avatar. The second return is
// false on a miss; a miss is not an error.
func (c *AssetCache) Get(ctx context.Context, avatarID string) (string, bool, error) {
	url, err := c.client.Get(ctx, c.assetKey(avatarID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting asset: %w", err)
	}
	return url, true, nil
}

// Warm fills the cache with the given avatar image URLs.
func (c *AssetCache) Warm(ctx context.Context, urls map[string]string) error {
	if len(urls) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for avatarID, url := range urls {
		pipe.Set(ctx, c.assetKey(avatarID), url, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warming asset cache: %w", err)
	}

	c.logger.Debug("asset cache warmed", "entries", len(urls))
	return nil
}

// Invalidate removes an avatar's entry from the cache
func (c *AssetCache) Invalidate(ctx context.Context, avatarID string) error {
	if err := c.client.Del(ctx, c.assetKey(avatarID)).Err(); err != nil {
		return fmt.Errorf("invalidating asset: %w", err)
	}
	return nil
}
