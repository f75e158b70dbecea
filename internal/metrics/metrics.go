// Package metrics defines Prometheus instrumentation for the
// fingerprinting pipeline, the store, and the duplicate resolver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_structurer_db_queries_total",
			Help: "Total number of store operations",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_structurer_db_query_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Pipeline metrics
var (
	FilesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_structurer_files_processed_total",
			Help: "Media files run through the fingerprint extractor",
		},
		[]string{"kind", "status"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_structurer_extraction_duration_seconds",
			Help:    "Fingerprint extraction duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	PipelineWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_structurer_pipeline_workers",
			Help: "Worker pool size of the current ingestion run",
		},
	)
)

// Resolver metrics
var (
	ResolverGroups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_structurer_resolver_groups_total",
			Help: "Duplicate groups examined by the resolver",
		},
		[]string{"outcome"},
	)

	ResolverBytesReclaimable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_structurer_resolver_bytes_reclaimable_total",
			Help: "Bytes marked for deletion by resolution decisions",
		},
	)
)
