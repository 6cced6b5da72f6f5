// Package metrics defines strategy-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Strategy histogram vectors
var (
	SignalDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "signal_duration_seconds",
		Help:      "Time spent generating signals by strategy",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"strategy"})
)

// Strategy counter vectors
var (
	IndicatorCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "indicator_cache_lookups_total",
		Help:      "Indicator cache lookups by result",
	}, []string{"result"})
)

// RecordSignalDuration records how long a strategy took to produce signals.
func RecordSignalDuration(strategyName string, durationSeconds float64) {
	SignalDuration.WithLabelValues(strategyName).Observe(durationSeconds)
}

// RecordIndicatorCacheLookup records an indicator cache hit or miss.
func RecordIndicatorCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	IndicatorCacheLookupsTotal.WithLabelValues(result).Inc()
}
