package rag

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scriptishrx/concierge/internal/llm"
	"github.com/scriptishrx/concierge/internal/tenant"
)

const redisKeyPrefix = "concierge:faq-embeddings:"

// redisCommands is the subset of redis operations the cache uses.
// *redis.Client satisfies it; tests substitute a scripted implementation.
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisCache is an EmbeddingCache shared across processes. Expiry is
// delegated to Redis key TTLs, so the hit/expiry semantics match MemoryCache
// without timestamp bookkeeping. Any Redis or decode failure degrades to a
// recompute, never to an error.
type RedisCache struct {
	client   redisCommands
	provider llm.Provider
	ttl      time.Duration
}

// NewRedisCache creates a RedisCache. A nonpositive ttl falls back to
// DefaultTTL.
func NewRedisCache(client redisCommands, provider llm.Provider, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, provider: provider, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string, faqs []tenant.FAQ) []FAQEmbedding {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == nil {
		var cached []FAQEmbedding
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return cached
		}
		slog.Warn("discarding undecodable cache entry", "component", "rag", "key", key)
	} else if err != redis.Nil {
		slog.Warn("cache read failed", "component", "rag", "key", key, "error", err)
	}

	fresh := computeEmbeddings(ctx, c.provider, faqs)

	if data, err := json.Marshal(fresh); err == nil {
		if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
			slog.Warn("cache write failed", "component", "rag", "key", key, "error", err)
		}
	}
	return fresh
}

func (c *RedisCache) Clear(ctx context.Context, key string) {
	if err := c.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		slog.Warn("cache clear failed", "component", "rag", "key", key, "error", err)
	}
}

func (c *RedisCache) ClearAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Warn("cache clear failed", "component", "rag", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		slog.Warn("cache scan failed", "component", "rag", "error", err)
	}
}

var _ EmbeddingCache = (*RedisCache)(nil)
