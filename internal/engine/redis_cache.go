package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCache is a SnapshotCache backed by Redis, for sharing snapshots
// across processes. It degrades gracefully: every Redis failure reads as a
// cache miss and the engine recomputes.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisCache wraps an existing Redis client. Keys are namespaced with the
// given prefix (defaulting to "snapshot").
func NewRedisCache(client *redis.Client, prefix string, logger zerolog.Logger) *RedisCache {
	if prefix == "" {
		prefix = "snapshot"
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "snapshot_cache").Logger(),
	}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + ":" + key
}

// Get fetches and decodes a cached snapshot. Any error is a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*PredictiveSnapshot, bool) {
	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug().Err(err).Str("key", key).Msg("Redis get failed, treating as miss")
		}
		return nil, false
	}

	var snapshot PredictiveSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Dropping undecodable cached snapshot")
		return nil, false
	}
	return &snapshot, true
}

// Set encodes and stores a snapshot with the given TTL. Failures are logged
// and dropped.
func (c *RedisCache) Set(ctx context.Context, key string, snapshot *PredictiveSnapshot, ttl time.Duration) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode snapshot for cache")
		return
	}
	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Redis set failed, snapshot not cached")
	}
}
