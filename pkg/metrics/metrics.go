package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edutrack_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts authorization decisions per module/action and outcome (allow|deny).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edutrack_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"module", "action", "result"},
	)

	// SlowServiceCalls counts service calls that exceeded the slow-call threshold.
	SlowServiceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edutrack_slow_service_calls_total",
			Help: "Number of service calls slower than the sampling threshold",
		},
		[]string{"label"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edutrack_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
