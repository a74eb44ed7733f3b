package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genevaclimate_http_requests_total",
			Help: "Total HTTP requests served",
		},
		[]string{"route", "status"},
	)

	HTTPRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genevaclimate_http_request_latency_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	ChartRenderSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genevaclimate_chart_render_seconds",
			Help:    "Time spent rendering chart PNGs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chart"},
	)

	ImageCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genevaclimate_image_cache_total",
			Help: "Image cache lookups by result",
		},
		[]string{"result"},
	)

	RecordsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "genevaclimate_records_loaded",
			Help: "Yearly records loaded from the weather table",
		},
	)

	ImportRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genevaclimate_import_runs_total",
			Help: "CSV import runs by outcome",
		},
		[]string{"outcome"},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genevaclimate_import_rows_total",
			Help: "Imported rows by outcome",
		},
		[]string{"outcome"},
	)

	NarrativeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genevaclimate_narrative_requests_total",
			Help: "Narrative generations by writer and status",
		},
		[]string{"writer", "status"},
	)
)
