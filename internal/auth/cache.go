package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenCachePrefix = "auth:token:"

// RedisCache keeps resolved identities in Redis. Keys are derived from a
// digest of the token so raw tokens never reach the cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache builds a token cache with the given entry lifetime.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenCachePrefix + hex.EncodeToString(sum[:16])
}

// Get returns the cached identity for token.
func (c *RedisCache) Get(ctx context.Context, token string) (Identity, bool) {
	data, err := c.client.Get(ctx, cacheKey(token)).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("auth.cache_get_failed", slog.Any("error", err))
		}
		return Identity{}, false
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false
	}
	return id, true
}

// Set caches id under token.
func (c *RedisCache) Set(ctx context.Context, token string, id Identity) {
	data, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(token), data, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("auth.cache_set_failed", slog.Any("error", err))
	}
}
