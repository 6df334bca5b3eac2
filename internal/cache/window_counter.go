package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowCounter counts hits per fixed window so every API replica
// enforces the same rate limit.
type RedisWindowCounter struct {
	client *redis.Client
}

func NewRedisWindowCounter(client *redis.Client) *RedisWindowCounter {
	return &RedisWindowCounter{client: client}
}

func WindowKey(key string, windowStart time.Time) string {
	return keyPrefix + "ratelimit:" + key + ":" + windowStart.UTC().Format("20060102T150405")
}

// Incr returns the hit count of key inside the window starting at windowStart.
func (c *RedisWindowCounter) Incr(ctx context.Context, key string, windowStart time.Time, window time.Duration) (int64, error) {
	redisKey := WindowKey(key, windowStart)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.Expire(ctx, redisKey, window+time.Second)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
