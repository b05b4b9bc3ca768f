// Package metrics exposes prometheus collectors for the booking core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings successfully created, by fee status.",
	}, []string{"fee_status"})

	BookingsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Bookings released, by reason.",
	}, []string{"reason"})

	PaymentConfirmations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_confirmations_total",
		Help: "Payment confirmations applied, by entry path.",
	}, []string{"source"})

	ExpirySweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "expiry_sweeps_total",
		Help: "Expiry sweep runs.",
	})

	ExpirySweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "expiry_sweep_duration_seconds",
		Help:    "Duration of expiry sweep runs.",
		Buckets: prometheus.DefBuckets,
	})
)

// Cancellation reasons.
const (
	ReasonUser    = "user"
	ReasonAdmin   = "admin"
	ReasonExpired = "expired"
)

// Confirmation sources.
const (
	SourceDirect  = "direct"
	SourceWebhook = "webhook"
)

// Handler serves the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
