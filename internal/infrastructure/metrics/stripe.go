package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		StripeAPIRequests,
		StripeAPILatency,
	)
}

var (
	// result: ok|card_error|api_error|invalid_request_error|network
	StripeAPIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripe_api_requests_total",
			Help: "Calls to the stripe API by operation and result.",
		},
		[]string{"operation", "result"},
	)

	StripeAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stripe_api_latency_seconds",
			Help:    "Latency of stripe API calls in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation"},
	)
)

func ObserveStripeCall(operation, result string, elapsed time.Duration) {
	StripeAPIRequests.WithLabelValues(norm(operation), norm(result)).Inc()
	StripeAPILatency.WithLabelValues(norm(operation)).Observe(elapsed.Seconds())
}
