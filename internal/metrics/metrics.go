package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "request_count",
		Help: "Total number of requests",
	}, []string{"endpoint"})
	RequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "request_latency_seconds",
		Help:    "Latency of requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	CitySearchCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "city_search_count",
		Help: "Number of times each city has been looked at",
	}, []string{"city"})
	ProviderRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weather_provider_requests_total",
		Help: "Total outbound weather provider requests",
	})
	ProviderFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "weather_provider_fail_total",
		Help: "Total weather provider failures (status, network or payload)",
	})
	ProviderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "weather_provider_duration_ms",
		Help:    "Weather provider call duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000},
	})
	ForecastCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forecast_cache_hits_total",
		Help: "Total forecast cache hits",
	})
	ForecastCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forecast_cache_misses_total",
		Help: "Total forecast cache misses",
	})
	LocateCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locate_cache_hits_total",
		Help: "Total reverse geocoding cache hits",
	})
	LocateCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locate_cache_misses_total",
		Help: "Total reverse geocoding cache misses",
	})
	NotFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locate_not_found_total",
		Help: "Total searches whose coordinates fell outside every boundary",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limited_total",
		Help: "Total requests rejected by the inbound rate limiter",
	})
)

func init() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(RequestLatency)
	prometheus.MustRegister(CitySearchCount)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderFailTotal)
	prometheus.MustRegister(ProviderDurationMs)
	prometheus.MustRegister(ForecastCacheHitsTotal)
	prometheus.MustRegister(ForecastCacheMissesTotal)
	prometheus.MustRegister(LocateCacheHitsTotal)
	prometheus.MustRegister(LocateCacheMissesTotal)
	prometheus.MustRegister(NotFoundTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// ObserveRequest 递增端点请求计数，返回的函数在请求结束时记录耗时
//
//	defer metrics.ObserveRequest("/search")()
func ObserveRequest(endpoint string) func() {
	RequestCount.WithLabelValues(endpoint).Inc()
	start := time.Now()
	return func() {
		RequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// 文档注释：返回 Prometheus 指标处理器，在主入口挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
