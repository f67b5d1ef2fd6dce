// Package metrics records scan counters on a private Prometheus registry and writes
// them in the node-exporter textfile format once a batch run finishes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joseph-ayodele/result-scanner/constants"
)

// Recorder holds all Prometheus metrics for a scan. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	DocumentsTotal   *prometheus.CounterVec
	PagesTotal       *prometheus.CounterVec
	RecordsTotal     prometheus.Counter
	DocumentDuration prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
}

// NewRecorder creates and registers all scan metrics
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_documents_total",
				Help: "Documents scanned, by outcome",
			},
			[]string{"outcome"},
		),
		PagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scanner_pages_total",
				Help: "Pages visited, by outcome",
			},
			[]string{"outcome"},
		),
		RecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "scanner_records_total",
				Help: "Qualified lines emitted",
			},
		),
		DocumentDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scanner_document_duration_seconds",
				Help:    "Time spent extracting and matching one document",
				Buckets: prometheus.DefBuckets,
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scanner_last_run_timestamp_seconds",
				Help: "Unix time the last scan finished",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) RecordDocument(outcome constants.DocumentOutcome, d time.Duration) {
	if r == nil {
		return
	}
	r.DocumentsTotal.WithLabelValues(string(outcome)).Inc()
	r.DocumentDuration.Observe(d.Seconds())
}

func (r *Recorder) RecordPage(outcome constants.PageOutcome) {
	if r == nil {
		return
	}
	r.PagesTotal.WithLabelValues(string(outcome)).Inc()
}

func (r *Recorder) RecordMatches(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.RecordsTotal.Add(float64(n))
}

func (r *Recorder) MarkRunFinished(t time.Time) {
	if r == nil {
		return
	}
	r.LastRunTimestamp.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
