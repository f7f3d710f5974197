package quotes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/trogers1052/trade-advisor/internal/models"
)

// RedisCache shares cached quotes between instances. Redis errors are logged
// and treated as misses so a cache outage only costs extra provider calls.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisCache creates a cache storing entries under prefix+"quote:"
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, log zerolog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		prefix: prefix + "quote:",
		ttl:    ttl,
		log:    log.With().Str("component", "quote_cache").Logger(),
	}
}

func (c *RedisCache) Get(ctx context.Context, symbol string) (models.Quote, bool) {
	data, err := c.client.Get(ctx, c.prefix+symbol).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("cache read failed")
		}
		return models.Quote{}, false
	}

	var q models.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("discarding undecodable cache entry")
		return models.Quote{}, false
	}
	return q, true
}

func (c *RedisCache) Put(ctx context.Context, symbol string, q models.Quote) {
	data, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+symbol, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("cache write failed")
	}
}

func (c *RedisCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Int("keys", len(keys)).Msg("cache invalidate failed")
	}
}
