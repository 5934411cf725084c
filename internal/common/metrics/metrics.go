// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_submissions_total",
			Help: "Total number of submissions by result",
		},
		[]string{"channel", "result"},
	)

	DeliveryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_delivery_attempts_total",
			Help: "Total number of delivery attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	RetriesScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_retries_scheduled_total",
			Help: "Total number of retries scheduled after transient failures",
		},
		[]string{"channel"},
	)

	AttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dispatch_attempt_duration_seconds",
			Help: "Duration of adapter delivery attempts in seconds",
		},
		[]string{"channel"},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatch_queue_depth",
			Help: "Current number of queued notifications per priority lane",
		},
		[]string{"priority"},
	)

	SSESessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_sse_sessions_active",
			Help: "Number of currently connected SSE sessions",
		},
	)
)
