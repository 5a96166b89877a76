package utils

import (
	"database/sql"
	"fmt"
	"strings"
	"visit-map/internal/config"
	"visit-map/internal/logger"
	"visit-map/internal/store"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenStore：按驱动名打开存储并配置连接池
// 约束：sqlite 固定单连接，写事务天然串行；内存库依赖该连接常驻，不设置生命周期
func OpenStore(driver, dsn string, maxOpen, maxIdle int) (*store.Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case "postgres", "pgx", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if maxOpen <= 0 {
			maxOpen = 50
		}
		if maxIdle <= 0 {
			maxIdle = 25
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxIdle)
	}
	logger.L().Debug("db_pool", "driver", driver, "max_open", maxOpen, "max_idle", maxIdle)
	return store.AttachDB(db, driver), nil
}

func OpenStoreFromConfig(c config.DB) (*store.Store, error) {
	return OpenStore(c.Driver, c.DSNString(), c.MaxOpen, c.MaxIdle)
}
