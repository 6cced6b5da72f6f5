package backtest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

func TestRunMonteCarloDeterministic(t *testing.T) {
	engine := newRunEngine(t, series(100, 101, 99, 102, 104, 103), series(0, 1, 1, -1, 1, 1))
	pnl, err := engine.StrategyPnL()
	require.NoError(t, err)

	cfg := MonteCarloConfig{Iterations: 500, Seed: 42}
	first, err := RunMonteCarlo(context.Background(), pnl, cfg)
	require.NoError(t, err)
	second, err := RunMonteCarlo(context.Background(), pnl, cfg)
	require.NoError(t, err)

	assert.Equal(t, 500, first.Iterations)
	assert.Len(t, first.Distribution, 500)
	assert.Equal(t, first.Distribution, second.Distribution)
	assert.LessOrEqual(t, first.VaR99, first.VaR95)
	assert.LessOrEqual(t, first.WorstMaxDrawdown, first.MedianMaxDrawdown)
	assert.LessOrEqual(t, first.MedianMaxDrawdown, 0.0)
	assert.Contains(t, first.ConfidenceIntervals, "95%")
}

func TestRunMonteCarloConstantPnL(t *testing.T) {
	result, err := RunMonteCarlo(context.Background(), series(1, 1, 1), MonteCarloConfig{Iterations: 50, Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, 3.0, result.MeanPnL)
	assert.Equal(t, 0.0, result.StdPnL)
	assert.Equal(t, 3.0, result.VaR95)
	assert.Equal(t, 1.0, result.ProbabilityOfProfit)
	assert.Equal(t, 0.0, result.WorstMaxDrawdown)
	assert.Equal(t, 0.0, result.ConfidenceIntervals["90%"])
}

func TestRunMonteCarloErrors(t *testing.T) {
	_, err := RunMonteCarlo(context.Background(), timeseries.Series{}, MonteCarloConfig{})
	assert.ErrorIs(t, err, ErrInsufficientData)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunMonteCarlo(ctx, series(1, -1), MonteCarloConfig{Iterations: 10, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMonteCarloResultToJSON(t *testing.T) {
	result, err := RunMonteCarlo(context.Background(), series(1, -2, 3), MonteCarloConfig{Iterations: 20, Seed: 3})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.ToJSON()), &decoded))
	assert.Nil(t, decoded["distribution"])
	assert.Equal(t, float64(20), decoded["iterations"])
}
