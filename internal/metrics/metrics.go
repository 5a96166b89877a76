package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 3000}

var (
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visitmap_requests_total",
		Help: "Total number of page requests",
	})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "visitmap_request_duration_ms",
		Help:    "Page request duration in milliseconds",
		Buckets: durationBuckets,
	})
	StageErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_stage_errors_total",
		Help: "Pipeline failures by stage",
	}, []string{"stage"})
	VisitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visitmap_visits_total",
		Help: "Total number of committed visit batches",
	})
	GeoRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_geo_requests_total",
		Help: "Geolocation lookups by source",
	}, []string{"source"})
	GeoFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "visitmap_geo_fail_total",
		Help: "Failed or empty geolocation lookups by source",
	}, []string{"source"})
	GeoDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "visitmap_geo_duration_ms",
		Help:    "Geolocation lookup duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"source"})
	GeoFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visitmap_geo_fallback_total",
		Help: "Resolutions that used sentinel values for at least one field",
	})
	GeoCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visitmap_geo_cache_hits_total",
		Help: "Total redis geolocation cache hits",
	})
	GeoCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "visitmap_geo_cache_misses_total",
		Help: "Total redis geolocation cache misses",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(StageErrorsTotal)
	prometheus.MustRegister(VisitsTotal)
	prometheus.MustRegister(GeoRequestsTotal)
	prometheus.MustRegister(GeoFailTotal)
	prometheus.MustRegister(GeoDurationMs)
	prometheus.MustRegister(GeoFallbackTotal)
	prometheus.MustRegister(GeoCacheHitsTotal)
	prometheus.MustRegister(GeoCacheMissesTotal)
}

// 文档注释：返回 Prometheus 指标处理器，由入口挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
