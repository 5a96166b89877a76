package migrate

import (
	"context"
	"visit-map/internal/logger"
)

type Execer interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

// 约束：仅使用 IF NOT EXISTS，重复调用无副作用；列类型同时兼容 PostgreSQL 与 SQLite
var schema = []string{
	`CREATE TABLE IF NOT EXISTS counter (
        country TEXT NOT NULL,
        city TEXT NOT NULL,
        value BIGINT NOT NULL DEFAULT 0,
        PRIMARY KEY (country, city)
    )`,
	`CREATE TABLE IF NOT EXISTS coordinates (
        lat DOUBLE PRECISION NOT NULL,
        long DOUBLE PRECISION NOT NULL,
        label TEXT NOT NULL,
        PRIMARY KEY (lat, long)
    )`,
}

// EnsureSchema：确保 counter 与 coordinates 两张表存在；任一语句失败立即返回
func EnsureSchema(ctx context.Context, db Execer) error {
	for i, s := range schema {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(ctx, s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
