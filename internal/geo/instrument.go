package geo

import (
	"context"
	"time"
	"visit-map/internal/logger"
	"visit-map/internal/metrics"
)

type instrumented struct {
	src Source
}

// Instrument：为数据源记录请求数、失败数与耗时，指标标签为 Name()
func Instrument(src Source) Source {
	if src == nil {
		return nil
	}
	return &instrumented{src: src}
}

func (i *instrumented) Name() string { return i.src.Name() }

func (i *instrumented) Lookup(ctx context.Context, ip string) (Result, error) {
	name := i.src.Name()
	t0 := time.Now()
	metrics.GeoRequestsTotal.WithLabelValues(name).Inc()
	r, err := i.src.Lookup(ctx, ip)
	metrics.GeoDurationMs.WithLabelValues(name).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil || r.Empty() {
		metrics.GeoFailTotal.WithLabelValues(name).Inc()
		logger.L().Debug("geo_lookup_fail", "source", name, "ip", ip, "err", err)
	}
	return r, err
}
