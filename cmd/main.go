// 程序入口：仅负责读取配置、初始化依赖并启动服务；路由注册在 internal/api
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"visit-map/internal/api"
	"visit-map/internal/config"
	"visit-map/internal/geo"
	"visit-map/internal/locate"
	"visit-map/internal/logger"
	"visit-map/internal/metrics"
	"visit-map/internal/migrate"
	"visit-map/internal/utils"
	"visit-map/internal/visit"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_loaded", "driver", cfg.DB.Driver, "strategy", cfg.Geo.Strategy, "addr", cfg.Addr)

	st, err := utils.OpenStoreFromConfig(cfg.DB)
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer st.Close()
	l.Info("db_open_ok", "driver", st.Driver())
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	if err := st.PingContext(ctx); err != nil {
		l.Error("db_ping_error", "err", err)
	} else {
		l.Info("db_ping_ok")
	}
	// 启动时预先建表；请求路径上仍会幂等地再执行一次
	if err := migrate.EnsureSchema(ctx, st); err != nil {
		cancel()
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}
	cancel()

	rc := utils.OpenRedis(cfg.Redis)
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	var src geo.Source
	if cfg.Geo.Strategy == config.StrategyGeo {
		var closeSrc func()
		src, closeSrc = buildGeoSource(cfg.Geo, rc, l)
		defer closeSrc()
	}
	res, err := locate.New(cfg.Geo.Strategy, src)
	if err != nil {
		l.Error("locate_error", "err", err)
		os.Exit(1)
	}
	svc := visit.NewService(st, res, cfg.RequestTimeout)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", api.BuildRoutes(svc, st, cfg.ClientAddrHeader))

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           logger.AccessMiddleware(l)(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		l.Info("shutdown_begin")
		_ = s.Shutdown(sctx)
	}()
	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
	}
	l.Info("shutdown_done")
}

// buildGeoSource：按 mmdb → ipdb → HTTP 接口 → ip2region 的顺序组装查询链；Redis 可用时外包缓存
// 约束：单个数据源打开失败只记录日志并跳过
func buildGeoSource(c config.Geo, rc *redis.Client, l *slog.Logger) (geo.Source, func()) {
	var list []geo.Source
	var closers []func() error
	if c.MMDBPath != "" {
		if m, err := geo.OpenMMDB(c.MMDBPath); err == nil {
			list = append(list, geo.Instrument(m))
			closers = append(closers, m.Close)
			md := m.Metadata()
			l.Info("geo_source_ready", "name", m.Name(), "path", c.MMDBPath, "type", md.DatabaseType, "build", md.BuildEpoch)
		} else {
			l.Error("geo_mmdb_error", "err", err)
		}
	}
	if c.IPDBPath != "" {
		if d, err := geo.OpenIPDB(c.IPDBPath, c.IPDBLang); err == nil {
			list = append(list, geo.Instrument(d))
			l.Info("geo_source_ready", "name", d.Name(), "path", c.IPDBPath, "lang", c.IPDBLang)
		} else {
			l.Error("geo_ipdb_error", "err", err)
		}
	}
	if c.Endpoint != "" {
		h := geo.NewHTTPSource(c.Endpoint, c.Timeout)
		list = append(list, geo.Instrument(h))
		l.Info("geo_source_ready", "name", h.Name(), "timeout", c.Timeout.String())
	}
	if c.IP2RegionPath != "" {
		if r, err := geo.OpenIP2Region(c.IP2RegionPath); err == nil {
			list = append(list, geo.Instrument(r))
			closers = append(closers, r.Close)
			l.Info("geo_source_ready", "name", r.Name(), "path", c.IP2RegionPath)
		} else {
			l.Error("geo_ip2region_error", "err", err)
		}
	}
	closeAll := func() {
		for _, f := range closers {
			_ = f()
		}
	}
	if len(list) == 0 {
		l.Warn("geo_no_source", "fallback", "sentinel")
	}
	var src geo.Source = geo.NewChain(list...)
	if rc != nil {
		src = geo.NewRedisCache(rc, src, c.CacheTTL)
		l.Info("geo_cache_enabled", "ttl", c.CacheTTL.String())
	}
	l.Debug("geo_chain", "name", src.Name())
	return src, closeAll
}
