// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Generation metrics
	SnapshotsGenerated prometheus.Counter
	VoyagesGenerated   prometheus.Counter
	DeriveDuration     prometheus.Histogram

	// Recommendation metrics
	RecommendationsServed *prometheus.CounterVec

	// Snapshot metrics
	SnapshotAgeSeconds  prometheus.Gauge
	SnapshotVoyageCount prometheus.Gauge

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Push metrics
	WSClientsConnected prometheus.Gauge
	WSEventsBroadcast  prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "portsync"
	}

	return &Metrics{
		// Generation metrics
		SnapshotsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "snapshots_generated_total",
			Help:      "Total number of voyage snapshots generated",
		}),
		VoyagesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "voyages_generated_total",
			Help:      "Total number of voyage records generated",
		}),
		DeriveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "costmodel",
			Name:      "derive_duration_seconds",
			Help:      "Batch cost derivation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Recommendation metrics
		RecommendationsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recommendation",
			Name:      "served_total",
			Help:      "Total number of recommendations served by decision",
		}, []string{"decision"}),

		// Snapshot metrics
		SnapshotAgeSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "age_seconds",
			Help:      "Seconds since the current snapshot was generated",
		}),
		SnapshotVoyageCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "voyage_count",
			Help:      "Number of voyages in the current snapshot",
		}),

		// Pipeline metrics
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by path and status code",
		}, []string{"path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		// Push metrics
		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "clients_connected",
			Help:      "Number of connected WebSocket clients",
		}),
		WSEventsBroadcast: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "events_broadcast_total",
			Help:      "Total number of events broadcast to WebSocket clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSnapshotGenerated records a generated snapshot and its voyage count.
func RecordSnapshotGenerated(voyages int) {
	DefaultMetrics.SnapshotsGenerated.Inc()
	DefaultMetrics.VoyagesGenerated.Add(float64(voyages))
	DefaultMetrics.SnapshotVoyageCount.Set(float64(voyages))
}

// ObserveDeriveDuration records the duration of a batch derivation.
func ObserveDeriveDuration(seconds float64) {
	DefaultMetrics.DeriveDuration.Observe(seconds)
}

// RecordRecommendation increments the served counter for a decision.
func RecordRecommendation(decision string) {
	DefaultMetrics.RecommendationsServed.WithLabelValues(decision).Inc()
}

// UpdateSnapshotAge updates the snapshot age gauge.
func UpdateSnapshotAge(seconds float64) {
	DefaultMetrics.SnapshotAgeSeconds.Set(seconds)
}

// RecordPipelineRun records a pipeline run outcome.
func RecordPipelineRun(status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PipelineDuration.Observe(durationSeconds)
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(path, status string, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(path).Observe(seconds)
}

// RecordWSClientConnected increments the connected clients gauge.
func RecordWSClientConnected() {
	DefaultMetrics.WSClientsConnected.Inc()
}

// RecordWSClientDisconnected decrements the connected clients gauge.
func RecordWSClientDisconnected() {
	DefaultMetrics.WSClientsConnected.Dec()
}

// RecordWSBroadcast increments the broadcast events counter.
func RecordWSBroadcast() {
	DefaultMetrics.WSEventsBroadcast.Inc()
}
