// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the request collectors.
const (
	OutcomeSuccess          = "success"
	OutcomeUpstreamRejected = "upstream_rejected"
	OutcomeFailure          = "failure"
)

var (
	WishRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wish_requests_total",
			Help: "Total number of generate-wish requests by tone and outcome",
		},
		[]string{"tone", "outcome"},
	)

	WishRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wish_request_duration_seconds",
			Help:    "End-to-end generate-wish latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"tone"},
	)

	WishRequestsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wish_requests_active",
			Help: "Number of generate-wish requests waiting on the completion API",
		},
	)

	UpstreamResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wish_upstream_responses_total",
			Help: "Completion API responses by HTTP status code",
		},
		[]string{"status_code"},
	)

	LocalFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wish_local_failures_total",
			Help: "Requests answered with 500 by error code",
		},
		[]string{"error_code"},
	)
)
