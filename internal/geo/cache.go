package geo

import (
	"context"
	"time"
	"visit-map/internal/logger"
	"visit-map/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// RedisCache：以 geo:<ip> 为键缓存非空查询结果
// 约束：rc 为 nil 时直接透传；Redis 读写失败只记录日志，不影响查询；失败与空结果不缓存
type RedisCache struct {
	rc  *redis.Client
	src Source
	ttl time.Duration
}

func NewRedisCache(rc *redis.Client, src Source, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{rc: rc, src: src, ttl: ttl}
}

func (c *RedisCache) Name() string { return "cache:" + c.src.Name() }

func cacheKey(ip string) string { return "geo:" + ip }

func (c *RedisCache) Lookup(ctx context.Context, ip string) (Result, error) {
	if c.rc == nil || ip == "" {
		return c.src.Lookup(ctx, ip)
	}
	key := cacheKey(ip)
	s, err := c.rc.Get(ctx, key).Result()
	switch {
	case err == nil && s != "":
		var r Result
		if err := json.Unmarshal([]byte(s), &r); err == nil {
			metrics.GeoCacheHitsTotal.Inc()
			return r, nil
		}
		logger.L().Debug("geo_cache_decode_error", "key", key)
	case err != nil && err != redis.Nil:
		logger.L().Debug("geo_cache_get_error", "key", key, "err", err)
	}
	metrics.GeoCacheMissesTotal.Inc()
	r, err := c.src.Lookup(ctx, ip)
	if err != nil || r.Empty() {
		return r, err
	}
	b, _ := json.Marshal(r)
	if err := c.rc.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
		logger.L().Debug("geo_cache_set_error", "key", key, "err", err)
	}
	return r, nil
}
