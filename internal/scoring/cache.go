package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opinionbalance/balancer/internal/logging"
)

// Cache stores score pairs keyed by text content. Implementations are
// best-effort: a cache failure never fails a scoring call.
type Cache interface {
	Get(ctx context.Context, text string) (ScorePair, bool)
	Put(ctx context.Context, text string, pair ScorePair)
}

const scoreKeyPrefix = "balancer:score:"

// RedisCache caches classifier scores in Redis with a TTL, so repeated
// measurements of unchanged comments skip the LLM call.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisCache creates a Redis-backed score cache.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger logging.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Get looks up a cached score pair.
func (c *RedisCache) Get(ctx context.Context, text string) (ScorePair, bool) {
	raw, err := c.client.Get(ctx, cacheKey(text)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("score cache read failed", logging.Err(err))
		}
		return ScorePair{}, false
	}

	var pair ScorePair
	if err := json.Unmarshal(raw, &pair); err != nil {
		c.logger.Warn("score cache entry corrupt", logging.Err(err))
		return ScorePair{}, false
	}
	return pair, true
}

// Put stores a score pair. Failures are logged and ignored.
func (c *RedisCache) Put(ctx context.Context, text string, pair ScorePair) {
	raw, err := json.Marshal(pair)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(text), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("score cache write failed", logging.Err(err))
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return scoreKeyPrefix + hex.EncodeToString(sum[:])
}
