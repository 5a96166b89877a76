// 包 utils：存储与 Redis 连接工具
package utils

import (
	"visit-map/internal/config"
	"visit-map/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：未配置 REDIS_HOST 时返回 nil，调用方据此跳过缓存
func OpenRedis(c config.Redis) *redis.Client {
	addr := c.Addr()
	if addr == "" {
		return nil
	}
	logger.L().Debug("redis_env", "addr", addr, "db", c.DB)
	return redis.NewClient(&redis.Options{Addr: addr, Password: c.Pass, DB: c.DB})
}
