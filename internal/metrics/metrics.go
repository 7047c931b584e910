package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "food_api_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "food_api_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	OrderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "food_api_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "food_api_notifications_total",
			Help: "Notifications handed to a transport, by outcome",
		},
		[]string{"transport", "status"},
	)
)

// Order operation labels
const (
	OpCreate     = "create"
	OpTransition = "transition"
	OpCheckout   = "checkout"
	OpReview     = "review"
	OpReport     = "report"
)

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordOrderOperation counts one order operation and whether it succeeded
func RecordOrderOperation(operation string, success bool) {
	OrderOperations.WithLabelValues(operation, outcome(success)).Inc()
}

// RecordNotification counts one notification dispatch on a transport
func RecordNotification(transport string, success bool) {
	NotificationsDispatched.WithLabelValues(transport, outcome(success)).Inc()
}
