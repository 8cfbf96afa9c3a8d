// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntakeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_requests_total",
			Help: "Total inbound application payloads by outcome",
		},
		[]string{"status"},
	)

	ApplicationsPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "applications_posted_total",
			Help: "Total applications rendered and posted to the review channel",
		},
	)

	PostsAbandoned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_abandoned_total",
			Help: "Accepted applications that could not be posted",
		},
		[]string{"reason"},
	)

	ClaimAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_attempts_total",
			Help: "Total claim attempts by outcome",
		},
		[]string{"outcome"},
	)

	ClaimStepFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_step_failures_total",
			Help: "Claim workflow failures by step and error code",
		},
		[]string{"step", "error_code"},
	)

	ClaimDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "claim_duration_seconds",
			Help: "Duration of the full claim workflow in seconds",
		},
	)
)
