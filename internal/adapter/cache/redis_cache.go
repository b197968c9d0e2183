package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sidtn/order-read-api/internal/usecase"
)

// scanBatch bounds both the SCAN page size and the number of keys per
// bulk DEL so a prefix clear never issues one unbounded command.
const scanBatch = 1000

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %v", usecase.ErrCacheUnavailable, key, err)
	}
	return val, true, nil
}

// Set writes the value under key. ttl zero stores the entry without
// expiration; overwriting an existing key is last-write-wins.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", usecase.ErrCacheUnavailable, key, err)
	}
	return nil
}

// ClearByPrefix removes every key under prefix using cursor-based SCAN
// pages and batched DELs. Zero matches is a successful no-op. Returns
// the number of keys removed.
func (c *RedisCache) ClearByPrefix(ctx context.Context, prefix string) (int, error) {
	pattern := prefix + "*"
	removed := 0

	iter := c.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	keys := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= scanBatch {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return removed, fmt.Errorf("%w: del batch: %v", usecase.ErrCacheUnavailable, err)
			}
			removed += len(keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("%w: scan %s: %v", usecase.ErrCacheUnavailable, pattern, err)
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			return removed, fmt.Errorf("%w: del batch: %v", usecase.ErrCacheUnavailable, err)
		}
		removed += len(keys)
	}
	return removed, nil
}

var _ usecase.OrderCache = (*RedisCache)(nil)
