// 包 api：集中注册 HTTP 路由以解耦主入口
package api

import (
	"context"
	"errors"
	"net/http"
	"time"
	"visit-map/internal/logger"
	"visit-map/internal/metrics"
	"visit-map/internal/render"
	"visit-map/internal/visit"
)

// Visitor：处理一次访问并返回完整页面；*visit.Service 满足该接口
type Visitor interface {
	Serve(ctx context.Context, clientAddr string) (string, error)
}

// Pinger：健康检查依赖；*store.Store 满足该接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

// BuildRoutes：构建路由；addrHeader 为空时只使用连接远端地址
func BuildRoutes(v Visitor, p Pinger, addrHeader string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		start := time.Now()
		metrics.RequestsTotal.Inc()
		defer func() {
			metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
		}()

		addr := clientAddr(r, addrHeader)
		page, err := v.Serve(r.Context(), addr)
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		if err != nil {
			stage := "unknown"
			var se *visit.StageError
			if errors.As(err, &se) {
				stage = se.Stage
			}
			metrics.StageErrorsTotal.WithLabelValues(stage).Inc()
			logger.L().Error("visit_error", "stage", stage, "client", addr, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(render.ErrorBody(err)))
			return
		}
		_, _ = w.Write([]byte(page))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		if err := p.PingContext(ctx); err != nil {
			logger.L().Warn("healthz_ping_error", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
