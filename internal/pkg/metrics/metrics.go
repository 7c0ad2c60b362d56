package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts API requests by route template, method and status
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketlens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration observes API latency by route template
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketlens_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route"},
	)

	// ScreenDuration observes a full screen run (fan-out included)
	ScreenDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketlens_screen_duration_seconds",
			Help:    "Screen computation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"screen"},
	)

	// ScreenTickersSkipped counts tickers dropped for insufficient data
	ScreenTickersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketlens_screen_tickers_skipped_total",
			Help: "Tickers excluded from a screen due to data gaps",
		},
		[]string{"screen", "reason"},
	)

	// CacheLookups counts screen cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketlens_screen_cache_lookups_total",
			Help: "Screen result cache lookups",
		},
		[]string{"result"},
	)

	// DBQueryDuration observes query latency by statement name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketlens_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"query"},
	)

	// DBConnections reports pool connection counts by state
	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketlens_db_connections",
			Help: "Database pool connections",
		},
		[]string{"state"},
	)
)
