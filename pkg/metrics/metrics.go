// Package metrics exposes Prometheus instrumentation for ingestion and
// report generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "sales_summary_"

	ResultSuccess = "success"
	ResultEmpty   = "empty"
	ResultError   = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ingestTotal   *prometheus.CounterVec
	ingestLatency *prometheus.HistogramVec
	rowsTotal     *prometheus.CounterVec
	reportTotal   *prometheus.CounterVec
	reportLatency *prometheus.HistogramVec
	historyPruned prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry
// together with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_total",
				Help: "Total ingestions by mode and result",
			},
			[]string{"mode", "result"},
		),
		ingestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingestion latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_total",
				Help: "Rows seen during ingestion by outcome",
			},
			[]string{"outcome"},
		),
		reportTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_total",
				Help: "Generated report artifacts by format and result",
			},
			[]string{"format", "result"},
		),
		reportLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report generation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		historyPruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "history_pruned_total",
				Help: "Upload history rows removed by the retention job",
			},
		),
	}

	m.registry.MustRegister(
		m.ingestTotal,
		m.ingestLatency,
		m.rowsTotal,
		m.reportTotal,
		m.reportLatency,
		m.historyPruned,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveIngest records one ingestion.
func (m *Metrics) ObserveIngest(mode, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ingestTotal.WithLabelValues(mode, result).Inc()
	m.ingestLatency.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// AddRows counts rows by outcome (accepted, invalid_amount, ...).
func (m *Metrics) AddRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(outcome).Add(float64(n))
}

// ObserveReport records one report build.
func (m *Metrics) ObserveReport(format, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reportTotal.WithLabelValues(format, result).Inc()
	m.reportLatency.WithLabelValues(format).Observe(elapsed.Seconds())
}

// AddPruned counts history rows removed by retention.
func (m *Metrics) AddPruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.historyPruned.Add(float64(n))
}
