// Package monitoring owns the Prometheus collectors exposed on /metrics.
package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outy_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outy_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	reservationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outy_reservations_created_total",
			Help: "Reservations created per listing type",
		},
		[]string{"related_type"},
	)

	reservationsCheckedIn = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outy_reservations_checked_in_total",
			Help: "Successful check-ins",
		},
	)

	usersRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outy_users_registered_total",
			Help: "Registrations per role",
		},
		[]string{"role"},
	)
)

// ObserveRequest records one finished HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// TrackReservationCreated counts a new reservation.
func TrackReservationCreated(relatedType string) {
	reservationsCreated.WithLabelValues(relatedType).Inc()
}

// TrackCheckIn counts a check-in.
func TrackCheckIn() { reservationsCheckedIn.Inc() }

// TrackRegistration counts a new account.
func TrackRegistration(role string) {
	usersRegistered.WithLabelValues(role).Inc()
}
