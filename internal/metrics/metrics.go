// Package metrics exposes Prometheus instrumentation for conversions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeExtractionError = "extraction_error"
	OutcomeEmpty           = "empty"
)

// Metrics holds the converter collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	documents    *prometheus.CounterVec
	transactions *prometheus.CounterVec
	warnings     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New registers the collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_documents_total",
			Help: "Documents processed, by statement form and outcome.",
		}, []string{"form", "outcome"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_transactions_total",
			Help: "Transactions extracted, by statement form.",
		}, []string{"form"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_parse_warnings_total",
			Help: "Matched lines dropped because a value could not be parsed.",
		}, []string{"form"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statement_conversion_seconds",
			Help:    "Time spent converting one request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"form"}),
	}
	m.registry.MustRegister(
		m.documents,
		m.transactions,
		m.warnings,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDocument records one processed document.
func (m *Metrics) ObserveDocument(form, outcome string, transactions, warnings int) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(form, outcome).Inc()
	m.transactions.WithLabelValues(form).Add(float64(transactions))
	m.warnings.WithLabelValues(form).Add(float64(warnings))
}

// ObserveConversion records the wall time of one conversion.
func (m *Metrics) ObserveConversion(form string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(form).Observe(elapsed.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
