// Package observability provides Prometheus metrics and logging for the service.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Upstream metrics
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec

	// Ingestion metrics
	PagesFetched        prometheus.Counter
	TransactionsFetched prometheus.Counter
	ItemsSkipped        prometheus.Counter
	PartialFetches      *prometheus.CounterVec

	// Pipeline metrics
	AnalysesTotal    *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec

	// Alert metrics
	AlertsTotal *prometheus.CounterVec

	registry prometheus.Gatherer
}

// NewMetrics creates a Metrics instance registered on reg.
// A nil reg registers on a fresh private registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "wallet_risk_lab"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_latency_seconds",
			Help:      "Upstream API call latency in seconds, retries included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream", "operation"}),
		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_errors_total",
			Help:      "Total number of failed upstream API calls",
		}, []string{"upstream", "operation"}),

		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pages_fetched_total",
			Help:      "Total number of transaction pages fetched",
		}),
		TransactionsFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_fetched_total",
			Help:      "Total number of transactions accepted from the indexer",
		}),
		ItemsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "items_skipped_total",
			Help:      "Total number of indexer items rejected at the boundary",
		}),
		PartialFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "partial_fetches_total",
			Help:      "Total number of transaction fetches that stopped early by reason",
		}, []string{"reason"}),

		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "analyses_total",
			Help:      "Total number of feature analyses by status",
		}, []string{"status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Feature pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"status"}),

		AlertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "sent_total",
			Help:      "Total number of alerts by status",
		}, []string{"status"}),

		registry: reg,
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserverFor returns a callback recording latency and errors for calls to
// the named upstream. Its signature matches upstream.Observer.
func (m *Metrics) ObserverFor(upstream string) func(operation string, err error, seconds float64) {
	return func(operation string, err error, seconds float64) {
		m.RecordUpstreamCall(upstream, operation, seconds, err)
	}
}

// RecordUpstreamCall records one upstream call.
func (m *Metrics) RecordUpstreamCall(upstream, operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(upstream, operation).Observe(seconds)
	if err != nil {
		m.UpstreamErrors.WithLabelValues(upstream, operation).Inc()
	}
}

// RecordPage records one fetched transaction page.
func (m *Metrics) RecordPage(items, skipped int) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.TransactionsFetched.Add(float64(items))
	m.ItemsSkipped.Add(float64(skipped))
}

// RecordPartialFetch records a transaction fetch that stopped early.
func (m *Metrics) RecordPartialFetch(reason string) {
	if m == nil {
		return
	}
	m.PartialFetches.WithLabelValues(reason).Inc()
}

// RecordAnalysis records a pipeline run.
func (m *Metrics) RecordAnalysis(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(status).Inc()
	m.PipelineDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordAlert records an alert delivery attempt.
func (m *Metrics) RecordAlert(status string) {
	if m == nil {
		return
	}
	m.AlertsTotal.WithLabelValues(status).Inc()
}
