package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/yourusername/vector-bt/internal/timeseries"
)

// MonteCarloConfig configures bootstrap resampling of per-bar P&L
type MonteCarloConfig struct {
	Iterations int
	// Seed 0 seeds from the clock
	Seed             int64
	ConfidenceLevels []float64
}

// MonteCarloResult summarizes the distribution of resampled final P&L
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	MeanPnL             float64            `json:"mean_pnl"`
	StdPnL              float64            `json:"std_pnl"`
	VaR95               float64            `json:"var_95"`
	VaR99               float64            `json:"var_99"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	MedianMaxDrawdown   float64            `json:"median_max_drawdown"`
	WorstMaxDrawdown    float64            `json:"worst_max_drawdown"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
	Distribution        []float64          `json:"distribution"`
}

// RunMonteCarlo resamples the strategy P&L bars with replacement and rebuilds
// the equity curve for each path. NaN bars contribute nothing, as in the
// equity curve itself.
func RunMonteCarlo(ctx context.Context, pnl timeseries.Series, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if len(cfg.ConfidenceLevels) == 0 {
		cfg.ConfidenceLevels = []float64{0.9, 0.95, 0.99}
	}
	if len(pnl) == 0 {
		return MonteCarloResult{}, fmt.Errorf("%w: no P&L bars to resample", ErrInsufficientData)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	bars := make([]float64, len(pnl))
	for i, p := range pnl {
		if !math.IsNaN(p.Value) {
			bars[i] = p.Value
		}
	}

	rng := rand.New(rand.NewSource(seed))
	distribution := make([]float64, cfg.Iterations)
	drawdowns := make([]float64, cfg.Iterations)

	for i := 0; i < cfg.Iterations; i++ {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return MonteCarloResult{}, err
			}
		}
		equity := 0.0
		peak := math.Inf(-1)
		maxDrawdown := 0.0
		for range bars {
			equity += bars[rng.Intn(len(bars))]
			peak = math.Max(peak, equity)
			maxDrawdown = math.Min(maxDrawdown, equity-peak)
		}
		distribution[i] = equity
		drawdowns[i] = maxDrawdown
	}

	mean, std := meanStd(distribution)
	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		MeanPnL:             mean,
		StdPnL:              std,
		VaR95:               percentile(distribution, 0.05),
		VaR99:               percentile(distribution, 0.01),
		ProbabilityOfProfit: probabilityAbove(distribution, 0),
		MedianMaxDrawdown:   percentile(drawdowns, 0.5),
		WorstMaxDrawdown:    percentile(drawdowns, 0),
		ConfidenceIntervals: CalculateConfidenceIntervals(distribution, cfg.ConfidenceLevels),
		Distribution:        distribution,
	}, nil
}

// CalculateConfidenceIntervals computes the width of each central interval
func CalculateConfidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64)
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := percentile(distribution, p)
		high := percentile(distribution, 1.0-p)
		results[formatPercent(level)] = high - low
	}
	return results
}

// ToJSON renders the result without the raw distribution
func (m MonteCarloResult) ToJSON() string {
	m.Distribution = nil
	data, _ := json.Marshal(m)
	return string(data)
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	valuesCopy := append([]float64{}, values...)
	sort.Float64s(valuesCopy)
	idx := int(math.Floor(p * float64(len(valuesCopy)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(valuesCopy) {
		idx = len(valuesCopy) - 1
	}
	return valuesCopy[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
