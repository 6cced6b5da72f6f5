// Package metrics defines grid-search metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Optimizer counter vectors
var (
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "searches_total",
		Help:      "Total number of grid searches by method and status",
	}, []string{"method", "status"})

	CombinationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "combinations_total",
		Help:      "Total number of evaluated parameter combinations by category and status",
	}, []string{"category", "status"})
)

// Optimizer histograms
var (
	SearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of a full grid search in seconds",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
	})
)

// Optimizer gauge vectors
var (
	BestScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "best_score",
		Help:      "Best score found by the most recent search per strategy and category",
	}, []string{"strategy", "category"})
)

// RecordSearch records a completed grid search.
// method should be one of: "grid", "walk_forward", "walk_forward_window"
func RecordSearch(method, status string, durationSeconds float64) {
	SearchesTotal.WithLabelValues(method, status).Inc()
	SearchDuration.Observe(durationSeconds)
}

// RecordCombination records the outcome of one parameter combination.
func RecordCombination(category, status string) {
	CombinationsTotal.WithLabelValues(category, status).Inc()
}

// UpdateBestScore updates the best score gauge.
func UpdateBestScore(strategyName, category string, score float64) {
	BestScore.WithLabelValues(strategyName, category).Set(score)
}
