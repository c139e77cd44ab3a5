// Package metrics provides Prometheus metrics for catalog queries and the
// booking workflow. Labels are limited to bounded enums; session and event
// IDs are never used as label values.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogQueriesTotal counts catalog queries by result status and cache outcome.
	CatalogQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culinary_catalog_queries_total",
		Help: "Total number of catalog queries, by result status and cache outcome.",
	}, []string{"status", "cache"})

	// BookingTransitionsTotal counts applied workflow transitions.
	BookingTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culinary_booking_transitions_total",
		Help: "Total number of applied booking workflow transitions, by source state, event and target state.",
	}, []string{"from", "event", "to"})

	// BookingRejectionsTotal counts refused workflow requests by reason.
	BookingRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culinary_booking_rejections_total",
		Help: "Total number of refused booking requests, by reason.",
	}, []string{"reason"})

	// ActiveBookingSessions tracks live booking sessions.
	ActiveBookingSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "culinary_booking_sessions_active",
		Help: "Current number of open booking sessions.",
	})

	// ConfirmationDuration observes how long confirmations take to resolve.
	ConfirmationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "culinary_booking_confirmation_duration_seconds",
		Help:    "Time from submission to confirmation outcome, by outcome.",
		Buckets: []float64{0.1, 0.5, 1, 2, 3, 5, 10},
	}, []string{"outcome"})
)

// RecordCatalogQuery records one catalog query.
func RecordCatalogQuery(status string, cacheHit bool) {
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	CatalogQueriesTotal.WithLabelValues(status, outcome).Inc()
}

// RecordTransition records one applied workflow transition.
func RecordTransition(from, event, to string) {
	BookingTransitionsTotal.WithLabelValues(from, event, to).Inc()
}

// RecordRejection records one refused workflow request.
func RecordRejection(reason string) {
	BookingRejectionsTotal.WithLabelValues(reason).Inc()
}
