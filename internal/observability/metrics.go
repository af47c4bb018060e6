// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the scoring pipeline.
type Metrics struct {
	// Fetch metrics
	FetchRequests prometheus.Counter
	FetchErrors   *prometheus.CounterVec
	FetchLatency  *prometheus.HistogramVec

	// Scoring metrics
	PairsProcessed *prometheus.CounterVec
	ScoresComputed prometheus.Counter

	// Persistence metrics
	UpsertErrors   prometheus.Counter
	ArchiveErrors  prometheus.Counter
	UpsertDuration prometheus.Histogram

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
	RunDuration       prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "cef_signal"
	}

	return &Metrics{
		FetchRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "requests_total",
			Help:      "Total number of price series fetch requests",
		}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "errors_total",
			Help:      "Total number of fetch failures by series leg",
		}, []string{"leg"}),
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "latency_seconds",
			Help:      "Price series fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"leg"}),

		PairsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "pairs_processed_total",
			Help:      "Total number of instrument pairs processed by outcome status",
		}, []string{"status"}),
		ScoresComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "scores_computed_total",
			Help:      "Total number of active z-scores computed",
		}),

		UpsertErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persist",
			Name:      "upsert_errors_total",
			Help:      "Total number of z-score upsert failures",
		}),
		ArchiveErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persist",
			Name:      "archive_errors_total",
			Help:      "Total number of price history archive failures",
		}),
		UpsertDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "persist",
			Name:      "upsert_duration_seconds",
			Help:      "Z-score upsert latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last completed run",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "run_duration_seconds",
			Help:      "Full batch run duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
