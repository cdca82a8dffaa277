// Package metrics provides Prometheus metrics for the PriceWatch web frontend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricewatch_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Price API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_upstream_requests_total",
			Help: "Total number of requests made to the price API",
		},
		[]string{"method", "endpoint", "status"}, // status: HTTP code or "transport_error"
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricewatch_upstream_request_duration_seconds",
			Help:    "Price API call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Query Cache Metrics
	QueryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_query_cache_total",
			Help: "Query cache lookups by resource and outcome",
		},
		[]string{"resource", "result"}, // "hit", "miss", "shared", "error", "retry"
	)

	QueryInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_query_invalidations_total",
			Help: "Cache entries marked stale after a mutation",
		},
		[]string{"resource"},
	)

	QueryCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_query_cache_entries",
			Help: "Number of entries currently held by the query cache",
		},
	)

	// Mutation Metrics
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_mutations_total",
			Help: "Product mutations by kind and result",
		},
		[]string{"kind", "result"}, // kind: "create", "update", "delete"; result: "success", "failed"
	)
)

// Middleware records request counts and latency per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
