package optimizer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/vector-bt/internal/backtest"
	"github.com/yourusername/vector-bt/internal/strategy"
)

func risingPrices(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	return values
}

func TestRunWalkForward(t *testing.T) {
	prices := series(risingPrices(30)...)
	f := &factoryRecorder{}
	o := newOptimizer(t, f.build, prices)

	result, err := o.WalkForward(context.Background(), Grid{{Name: "w", Values: []any{-1.0, 1.0}}}, "pnl",
		WalkForwardConfig{TrainBars: 10, TestBars: 5})
	require.NoError(t, err)

	require.Len(t, result.Windows, 4)
	first := result.Windows[0]
	assert.Equal(t, 1, first.WindowID)
	assert.Equal(t, prices[0].Time, first.TrainStart)
	assert.Equal(t, prices[9].Time, first.TrainEnd)
	assert.Equal(t, prices[10].Time, first.TestStart)
	assert.Equal(t, prices[14].Time, first.TestEnd)
	assert.Equal(t, prices[5].Time, result.Windows[1].TrainStart)

	for _, w := range result.Windows {
		require.NoError(t, w.Err)
		assert.Equal(t, strategy.Params{"w": 1.0}, w.BestParams)
		assert.Equal(t, 9.0, w.TrainPnL)
		assert.Equal(t, 5.0, w.TestPnL)
	}
	assert.Equal(t, 20.0, result.TotalTestPnL)
	assert.Equal(t, 1.0, result.ConsistencyScore)
	assert.InDelta(t, (36.0-20.0)/36.0, result.OverfitScore, 1e-12)
	assert.Len(t, result.Evaluated(), 4)
}

func TestWalkForwardCustomStep(t *testing.T) {
	f := &factoryRecorder{}
	o := newOptimizer(t, f.build, series(risingPrices(30)...))

	result, err := o.WalkForward(context.Background(), Grid{{Name: "w", Values: []any{1.0}}}, "sharpe",
		WalkForwardConfig{TrainBars: 10, TestBars: 5, StepBars: 10})
	require.NoError(t, err)
	assert.Len(t, result.Windows, 2)
}

func TestWalkForwardWindowWithoutWinner(t *testing.T) {
	f := &factoryRecorder{failOn: 1.0}
	o := newOptimizer(t, f.build, series(risingPrices(20)...))

	result, err := o.WalkForward(context.Background(), Grid{{Name: "w", Values: []any{1.0}}}, "pnl",
		WalkForwardConfig{TrainBars: 10, TestBars: 5})
	require.NoError(t, err)
	require.Len(t, result.Windows, 2)
	for _, w := range result.Windows {
		assert.Error(t, w.Err)
		assert.Equal(t, 1, w.Skipped)
	}
	assert.Equal(t, 0.0, result.ConsistencyScore)
	assert.Equal(t, 0.0, result.OverfitScore)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.ToJSON()), &decoded))
	windows := decoded["windows"].([]any)
	require.Len(t, windows, 2)
	assert.Nil(t, windows[0].(map[string]any)["test_pnl"])
	assert.Contains(t, windows[0].(map[string]any)["error"], "no parameters")
}

func TestWalkForwardValidation(t *testing.T) {
	f := &factoryRecorder{}
	o := newOptimizer(t, f.build, series(risingPrices(12)...))
	grid := Grid{{Name: "w", Values: []any{1.0}}}

	_, err := o.WalkForward(context.Background(), grid, "calmar", WalkForwardConfig{TrainBars: 5, TestBars: 2})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = o.WalkForward(context.Background(), grid, "pnl", WalkForwardConfig{TrainBars: 1, TestBars: 2})
	assert.Error(t, err)

	_, err = o.WalkForward(context.Background(), grid, "pnl", WalkForwardConfig{TrainBars: 10, TestBars: 5})
	assert.ErrorIs(t, err, backtest.ErrInsufficientData)

	_, err = o.WalkForward(context.Background(), Grid{{Name: "w"}}, "pnl", WalkForwardConfig{TrainBars: 5, TestBars: 2})
	assert.ErrorIs(t, err, ErrEmptySearchSpace)
	assert.Zero(t, f.calls.Load())
}

func TestWalkForwardCancelled(t *testing.T) {
	f := &factoryRecorder{}
	o := newOptimizer(t, f.build, series(risingPrices(30)...))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.WalkForward(ctx, Grid{{Name: "w", Values: []any{1.0}}}, "pnl", WalkForwardConfig{TrainBars: 10, TestBars: 5})
	assert.ErrorIs(t, err, context.Canceled)
}
