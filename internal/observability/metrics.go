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
	// Aggregator metrics
	FetchesTotal    *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	FetchesInFlight prometheus.Gauge

	// Source metrics
	SourceRequestLatency *prometheus.HistogramVec
	SourceRequestErrors  *prometheus.CounterVec
	SourceCacheHits      *prometheus.CounterVec

	// Snapshot metrics
	SnapshotsSaved      prometheus.Counter
	LastSuccessfulFetch prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "vault"
	}
	factory := promauto.With(reg)

	return &Metrics{
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "fetches_total",
			Help:      "Total number of completed token view fetches by resulting state",
		}, []string{"state"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "fetch_duration_seconds",
			Help:      "Token view fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		FetchesInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregator",
			Name:      "fetches_in_flight",
			Help:      "Number of token view fetches currently running",
		}),
		SourceRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "request_latency_seconds",
			Help:      "Source provider request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		SourceRequestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "request_errors_total",
			Help:      "Total number of failed source provider requests by error kind",
		}, []string{"method", "kind"}),
		SourceCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "cache_hits_total",
			Help:      "Total number of source requests served from cache",
		}, []string{"method"}),
		SnapshotsSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "saved_total",
			Help:      "Total number of token snapshots stored",
		}),
		LastSuccessfulFetch: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_fetch_timestamp",
			Help:      "Unix timestamp of the last fetch that reached the Ready state",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// FetchStarted increments the in-flight fetch gauge.
func FetchStarted() {
	DefaultMetrics.FetchesInFlight.Inc()
}

// RecordFetch records a completed fetch with its resulting state.
func RecordFetch(state string, seconds float64, unixNow int64) {
	DefaultMetrics.FetchesInFlight.Dec()
	DefaultMetrics.FetchesTotal.WithLabelValues(state).Inc()
	DefaultMetrics.FetchDuration.Observe(seconds)
	if state == "ready" {
		DefaultMetrics.LastSuccessfulFetch.Set(float64(unixNow))
	}
}

// RecordSourceRequest records a source provider request. kind is empty on success.
func RecordSourceRequest(method string, seconds float64, kind string) {
	DefaultMetrics.SourceRequestLatency.WithLabelValues(method).Observe(seconds)
	if kind != "" {
		DefaultMetrics.SourceRequestErrors.WithLabelValues(method, kind).Inc()
	}
}

// RecordCacheHit records a source request answered from cache.
func RecordCacheHit(method string) {
	DefaultMetrics.SourceCacheHits.WithLabelValues(method).Inc()
}

// RecordSnapshotSaved increments the stored snapshot counter.
func RecordSnapshotSaved() {
	DefaultMetrics.SnapshotsSaved.Inc()
}
