// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "githubdownfall"

var (
	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status_code"},
	)

	// DBPoolConnections tracks database connection pool state.
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "pool_connections",
			Help:      "Number of database connections by state",
		},
		[]string{"state"},
	)

	// CacheLookups counts SWR cache lookups by key and outcome
	// (hit, stale, miss, cold_failure).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "SWR cache lookups by outcome",
		},
		[]string{"key", "outcome"},
	)

	// CacheRefreshes counts background cache refreshes by key and result.
	CacheRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "refreshes_total",
			Help:      "Background cache refreshes by result",
		},
		[]string{"key", "result"},
	)

	// UpstreamRequests counts calls to the upstream status feed.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream status feed requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)
)

// RecordCacheLookup records one SWR cache lookup outcome.
func RecordCacheLookup(key, outcome string) {
	CacheLookups.WithLabelValues(key, outcome).Inc()
}

// RecordCacheRefresh records one background refresh result.
func RecordCacheRefresh(key, result string) {
	CacheRefreshes.WithLabelValues(key, result).Inc()
}

// RecordUpstreamRequest records one upstream request result.
func RecordUpstreamRequest(endpoint, result string) {
	UpstreamRequests.WithLabelValues(endpoint, result).Inc()
}
