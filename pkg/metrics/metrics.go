package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeck_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// SessionConnections tracks open realtime dashboard connections per resource kind (trial|flight).
	SessionConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flightdeck_session_connections",
			Help: "Number of open realtime session connections",
		},
		[]string{"kind"},
	)

	// SessionMessages counts relayed realtime messages by type.
	SessionMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeck_session_messages_total",
			Help: "Total number of realtime messages relayed between participants",
		},
		[]string{"type"},
	)

	// SessionDisconnects counts connection terminations by cause (normal|abnormal|backpressure).
	SessionDisconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightdeck_session_disconnects_total",
			Help: "Total number of realtime session disconnects",
		},
		[]string{"cause"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightdeck_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
