package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the dispatch backend
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Store Metrics
	StoreOpsTotal   prometheus.CounterVec
	StoreOpDuration prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Business Metrics
	RecordsCreatedTotal      prometheus.Counter
	DuplicateRecordsRejected prometheus.Counter
	ReferenceUpsertsTotal    prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dispatch_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dispatch_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		StoreOpsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_store_operations_total",
				Help: "Total store operations by operation name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		StoreOpDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dispatch_store_operation_duration_seconds",
				Help:    "Store operation execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		RecordsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_records_created_total",
				Help: "Total dispatch records accepted",
			},
		),
		DuplicateRecordsRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_duplicate_records_rejected_total",
				Help: "Total dispatch records rejected by the one-per-route-per-day rule",
			},
		),
		ReferenceUpsertsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_reference_upserts_total",
				Help: "Total usage-tracking upserts by reference entity kind",
			},
			[]string{"kind"},
		),
	}
}
