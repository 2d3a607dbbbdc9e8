package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CyclesStarted counts fetch cycles by trigger source.
	CyclesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_cycles_started_total",
			Help: "Total number of fetch cycles started",
		},
		[]string{"trigger"},
	)

	// CyclesCommitted counts cycles whose results were committed.
	CyclesCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_cycles_committed_total",
			Help: "Total number of fetch cycles committed",
		},
	)

	// CyclesSuperseded counts cycles discarded because a later cycle started
	// before they settled.
	CyclesSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_cycles_superseded_total",
			Help: "Total number of fetch cycles discarded as stale",
		},
	)

	// CyclesFailed counts cycles where at least one backend call failed.
	CyclesFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_cycles_failed_total",
			Help: "Total number of fetch cycles that failed",
		},
	)

	// CycleDuration observes wall time of a full fetch cycle.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fetch_cycle_duration_seconds",
			Help:    "Fetch cycle duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// ActiveControllers tracks live per-sensor refresh controllers.
	ActiveControllers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "refresh_controllers_active",
			Help: "Number of active per-sensor refresh controllers",
		},
	)

	// WSClients tracks connected dashboard WebSocket clients.
	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients_connected",
			Help: "Number of connected WebSocket clients",
		},
	)

	// CacheOperations counts redis cache operations by outcome.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)

	// RequestsTotal counts dashboard HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration observes dashboard HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
