// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_submissions_total",
			Help: "Total number of submissions processed, by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_stage_failures_total",
			Help: "Total number of pipeline stage failures",
		},
		[]string{"stage", "error_code"},
	)

	EvaluatorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screening_evaluator_duration_seconds",
			Help:    "Duration of external evaluator calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_notifications_sent_total",
			Help: "Notifications attempted per channel and result",
		},
		[]string{"channel", "result"},
	)
)
