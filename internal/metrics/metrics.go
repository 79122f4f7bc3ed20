// Package metrics exposes Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Labels: method, route (fiber route pattern), status.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartgoals_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartgoals_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Labels: provider (deepseek, gemini), status (success, failed).
	breakdownGenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartgoals_breakdown_generations_total",
			Help: "Total number of AI breakdown generations",
		},
		[]string{"provider", "status"},
	)

	// Buckets reach 5 minutes: long deadlines mean many chunks.
	breakdownDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smartgoals_breakdown_duration_seconds",
			Help:    "Duration of AI breakdown generations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"provider"},
	)

	// Labels: outcome (completed, reopened).
	taskTogglesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartgoals_task_toggles_total",
			Help: "Total number of task completion changes",
		},
		[]string{"outcome"},
	)

	goalStatusChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartgoals_goal_status_changes_total",
			Help: "Total number of goal status changes by new status",
		},
		[]string{"status"},
	)

	// Labels: channel (push, email, in_app), status (sent, failed, skipped).
	notificationDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smartgoals_notification_deliveries_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"channel", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(breakdownGenerationsTotal)
	prometheus.MustRegister(breakdownDuration)
	prometheus.MustRegister(taskTogglesTotal)
	prometheus.MustRegister(goalStatusChangesTotal)
	prometheus.MustRegister(notificationDeliveriesTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, route string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func RecordBreakdown(provider, status string, seconds float64) {
	breakdownGenerationsTotal.WithLabelValues(provider, status).Inc()
	breakdownDuration.WithLabelValues(provider).Observe(seconds)
}

func RecordTaskToggle(completed bool) {
	outcome := "reopened"
	if completed {
		outcome = "completed"
	}
	taskTogglesTotal.WithLabelValues(outcome).Inc()
}

func RecordGoalStatusChange(status string) {
	goalStatusChangesTotal.WithLabelValues(status).Inc()
}

func RecordNotification(channel, status string) {
	notificationDeliveriesTotal.WithLabelValues(channel, status).Inc()
}
