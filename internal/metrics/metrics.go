// Package metrics exposes Prometheus instrumentation for the catalog.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront_catalog"

// Outcome labels for catalog writes
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeConflict   = "conflict"
	OutcomeNotFound   = "not_found"
	OutcomeForbidden  = "forbidden"
	OutcomeError      = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	Writes         *prometheus.CounterVec
	WriteDuration  *prometheus.HistogramVec
	Uploads        *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	SnapshotReads  *prometheus.CounterVec
	FacetRuns      *prometheus.CounterVec
	FacetResults   prometheus.Histogram
}

// New registers the catalog collectors on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Catalog writes by operation and outcome",
		}, []string{"op", "outcome"}),
		WriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Duration of catalog writes including image uploads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		Uploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_uploads_total",
			Help:      "Image uploads by result",
		}, []string{"result"}),
		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_upload_duration_seconds",
			Help:      "Duration of a single image upload",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotReads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reads_total",
			Help:      "Catalog snapshot reads by cache result",
		}, []string{"cache"}),
		FacetRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facet_runs_total",
			Help:      "Browse requests by sort key",
		}, []string{"sort"}),
		FacetResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "facet_result_size",
			Help:      "Number of products returned by a browse request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// ObserveWrite records one catalog write.
func (m *Metrics) ObserveWrite(op, outcome string, started time.Time) {
	m.Writes.WithLabelValues(op, outcome).Inc()
	m.WriteDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveUpload(ok bool, started time.Time) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Uploads.WithLabelValues(result).Inc()
	m.UploadDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
