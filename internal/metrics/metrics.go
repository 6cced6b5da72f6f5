// Package metrics provides the centralized Prometheus metrics registry for backtests and searches.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "vector_bt"

// Run statuses used as label values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusTimeout = "timeout"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Engine metrics
var (
	EngineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "engine_runs_total",
		Help:      "Total number of backtest engine runs by strategy and status",
	}, []string{"strategy", "status"})

	EngineRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "engine_run_duration_seconds",
		Help:      "Duration of a single engine run in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	SeriesLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "series_length",
		Help:      "Number of observations in the most recently loaded price series",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register engine metrics
		registry.MustRegister(EngineRunsTotal)
		registry.MustRegister(EngineRunDuration)
		registry.MustRegister(SeriesLength)

		// Register optimizer metrics
		registry.MustRegister(SearchesTotal)
		registry.MustRegister(CombinationsTotal)
		registry.MustRegister(SearchDuration)
		registry.MustRegister(BestScore)

		// Register strategy metrics
		registry.MustRegister(SignalDuration)
		registry.MustRegister(IndicatorCacheLookupsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEngineRun records one engine run.
func RecordEngineRun(strategyName, status string, durationSeconds float64) {
	EngineRunsTotal.WithLabelValues(strategyName, status).Inc()
	EngineRunDuration.Observe(durationSeconds)
}

// UpdateSeriesLength records the size of the loaded price series.
func UpdateSeriesLength(n int) {
	SeriesLength.Set(float64(n))
}
