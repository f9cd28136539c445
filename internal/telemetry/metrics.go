// Package telemetry provides Prometheus metrics for batch loads and searches.
// Metrics live on a private registry and are only exported on request,
// either through Registry() or as a node-exporter textfile.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "wordindex"

// Batch outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeTimeout  = "timeout"
	OutcomeFailed   = "failed"
)

// Metrics holds the counters, gauges and histograms for one process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// BatchesTotal counts Load calls by outcome.
	// Labels: outcome (success, rejected, timeout, failed)
	BatchesTotal *prometheus.CounterVec

	// TasksTotal counts file tasks by final status.
	// Labels: status (ok, file_not_found, failed, cancelled)
	TasksTotal *prometheus.CounterVec

	// TokensTotal counts raw tokens read, including filtered ones.
	TokensTotal prometheus.Counter

	// BatchDurationSeconds measures wall time of a Load call.
	BatchDurationSeconds prometheus.Histogram

	// Words tracks the number of distinct words in the index.
	Words prometheus.Gauge

	// SearchesTotal counts searches by cache result.
	// Labels: cache (hit, miss)
	SearchesTotal *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "loads_total",
			Help:      "Total batch loads by outcome",
		}, []string{"outcome"}),
		TasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "tasks_total",
			Help:      "Total file tasks by final status",
		}, []string{"status"}),
		TokensTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "tokens_total",
			Help:      "Total raw tokens read from input files",
		}),
		BatchDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch load duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		Words: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "index",
			Name:      "words",
			Help:      "Number of distinct words in the index",
		}),
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total search queries by cache result",
		}, []string{"cache"}),
	}
}

// Registry returns the private registry holding all metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveBatch records a finished Load call.
func (m *Metrics) ObserveBatch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(outcome).Inc()
	m.BatchDurationSeconds.Observe(d.Seconds())
}

// ObserveTask records one file task result.
func (m *Metrics) ObserveTask(status string, processed int) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(status).Inc()
	if processed > 0 {
		m.TokensTotal.Add(float64(processed))
	}
}

// SetWords updates the distinct word gauge.
func (m *Metrics) SetWords(n int) {
	if m == nil {
		return
	}
	m.Words.Set(float64(n))
}

// ObserveSearch records a search and whether it was served from cache.
func (m *Metrics) ObserveSearch(cached bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cached {
		label = "hit"
	}
	m.SearchesTotal.WithLabelValues(label).Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically so a collector never reads a partial dump.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
