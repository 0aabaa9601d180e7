package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "queries_total",
			Help:      "Total answered queries by outcome",
		},
		[]string{"outcome"}, // "ok" / "degraded" / "cache_hit" / "panic"
	)

	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "insight_engine",
			Name:      "query_duration_seconds",
			Help:      "End-to-end answerQuery duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CollectionReadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "collection_read_failures_total",
			Help:      "Knowledge collection reads that failed and contributed zero records",
		},
		[]string{"collection"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "insight_engine",
			Name:      "generation_duration_seconds",
			Help:      "Generation backend call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"model"},
	)

	GenerationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "generation_fallbacks_total",
			Help:      "Syntheses that fell back to the template answer",
		},
	)

	AlertFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "insight_engine",
			Name:      "alert_failures_total",
			Help:      "Alert notifications that could not be delivered",
		},
	)
)

// Register installs all engine metrics on the default registry. Call once
// at startup.
func Register() {
	prometheus.MustRegister(
		QueriesTotal,
		QueryDuration,
		CollectionReadFailures,
		GenerationDuration,
		GenerationFallbacks,
		AlertFailures,
	)
}
