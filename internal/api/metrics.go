package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts extraction and mapping activity for /metrics.
type Metrics struct {
	Extractions    *prometheus.CounterVec
	MappingRuns    prometheus.Counter
	UnmappedFields prometheus.Gauge
	MappingSeconds prometheus.Histogram
}

// NewMetrics registers the service collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schemaforge_extractions_total",
			Help: "Schema extractions by document format.",
		}, []string{"format"}),
		MappingRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "schemaforge_mapping_runs_total",
			Help: "Completed mapping generations.",
		}),
		UnmappedFields: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schemaforge_unmapped_fields",
			Help: "Source fields without a target in the latest mapping run.",
		}),
		MappingSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "schemaforge_mapping_duration_seconds",
			Help:    "Wall time of mapping generation.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
