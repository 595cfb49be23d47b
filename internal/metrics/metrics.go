// Package metrics exposes Prometheus instrumentation for PostPilot.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpilot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "postpilot_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postpilot_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	pipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpilot_pipeline_runs_total",
			Help: "Total number of pipeline runs by trigger and final status",
		},
		[]string{"trigger", "status"},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "postpilot_generation_duration_seconds",
			Help:    "Post generation time in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	publishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "postpilot_publish_duration_seconds",
			Help:    "Publish call time in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postpilot_notifications_total",
			Help: "Total number of outcome notifications by delivery status",
		},
		[]string{"status"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func IncrementInFlight() {
	httpRequestsInFlight.Inc()
}

func DecrementInFlight() {
	httpRequestsInFlight.Dec()
}

// RecordPipelineRun counts one completed run. Trigger is "manual" or
// "scheduled"; status is the final history status or "error".
func RecordPipelineRun(trigger, status string) {
	pipelineRuns.WithLabelValues(trigger, status).Inc()
}

func ObserveGeneration(duration time.Duration) {
	generationDuration.Observe(duration.Seconds())
}

func ObservePublish(duration time.Duration) {
	publishDuration.Observe(duration.Seconds())
}

func RecordNotification(status string) {
	notificationsTotal.WithLabelValues(status).Inc()
}
