// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shuttle_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shuttle_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BookingsAdmitted counts bookings created in pending state.
	BookingsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shuttle_bookings_admitted_total",
		Help: "Bookings admitted into pending state",
	})

	// BookingsRejected counts admission rejections by reason.
	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shuttle_bookings_rejected_total",
			Help: "Booking requests rejected before creation",
		},
		[]string{"reason"},
	)

	// BookingTransitions counts lifecycle transitions by target status.
	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shuttle_booking_transitions_total",
			Help: "Booking status transitions",
		},
		[]string{"status"},
	)

	// RouteFallbacks counts lookups answered by a local heuristic instead of the oracle.
	RouteFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shuttle_route_fallbacks_total",
			Help: "Route lookups resolved by a fallback",
		},
		[]string{"leg", "source"},
	)

	// NotificationFailures counts outbound messages that could not be delivered.
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shuttle_notification_failures_total",
		Help: "Outbound notifications that failed",
	})
)

// Rejection reasons.
const (
	ReasonMissingFields = "missing_fields"
	ReasonUnavailable   = "unavailable"
	ReasonCapacity      = "capacity"
	ReasonConflict      = "conflict"
)

// Middleware records request counts and latencies.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, statusClass(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
