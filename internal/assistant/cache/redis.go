package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	errx "github.com/radchat-core-poc/server/internal/core/error"
	logx "github.com/radchat-core-poc/server/pkg/logger"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// RedisCache stores documents under namespaced keys with no expiry.
// SetNX gives the first-writer-wins semantics of the cache contract.
type RedisCache struct {
	rdb redis.Cmdable
}

func NewRedis(rdb redis.Cmdable) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) cacheKey(ns model.Namespace, key string) string {
	return fmt.Sprintf("doccache:%s:%s", ns, key)
}

func (c *RedisCache) Get(ctx context.Context, ns model.Namespace, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, c.cacheKey(ns, key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		logx.Error().Err(err).Str("namespace", string(ns)).Str("key", key).Msg("cache lookup failed")
		return "", false, errx.WrapRedis(err)
	}
	return value, true, nil
}

func (c *RedisCache) Put(ctx context.Context, ns model.Namespace, key, value string) error {
	if err := c.rdb.SetNX(ctx, c.cacheKey(ns, key), value, 0).Err(); err != nil {
		logx.Error().Err(err).Str("namespace", string(ns)).Str("key", key).Msg("cache write failed")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.DocumentCache = (*RedisCache)(nil)
