package backtest

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/vector-bt/internal/strategy"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

var t0 = time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)

type staticStrategy struct {
	signals timeseries.Series
	err     error
	calls   int
}

func (s *staticStrategy) Name() string { return "static" }
func (s *staticStrategy) GetSignals(ctx context.Context) (timeseries.Series, error) {
	_ = ctx
	s.calls++
	return s.signals, s.err
}
func (s *staticStrategy) GetParameters() strategy.Params { return strategy.Params{} }

type failingRenderer struct{ calls int }

func (f *failingRenderer) Render(series ReportSeries) error {
	f.calls++
	return errors.New("display unavailable")
}

func series(values ...float64) timeseries.Series {
	return timeseries.FromValues(t0, time.Minute, values...)
}

func newRunEngine(t *testing.T, prices, signals timeseries.Series, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), prices, &staticStrategy{signals: signals}, opts...)
	require.NoError(t, err)
	require.NoError(t, engine.Run(context.Background()))
	return engine
}

func TestEngineReferenceScenario(t *testing.T) {
	engine := newRunEngine(t, series(100, 101, 99, 102), series(0, 1, 1, -1))

	returns, err := engine.StrategyReturns()
	require.NoError(t, err)
	require.Len(t, returns, 3)
	assert.InDelta(t, 0.01, returns[0].Value, 1e-12)
	assert.InDelta(t, -2.0/101.0, returns[1].Value, 1e-12)
	assert.InDelta(t, -3.0/99.0, returns[2].Value, 1e-12)

	pnl, err := engine.StrategyPnL()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2, -3}, pnl.Values())

	summary, err := engine.Summary(false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1, -4}, summary.Equity.Values())
	assert.Equal(t, []float64{1, 1, 1}, summary.RunningMax.Values())
	assert.Equal(t, []float64{0, -2, -5}, summary.Drawdown.Values())
	assert.Equal(t, -5.0, summary.MaxDrawdown)
	assert.Equal(t, -4.0, summary.FinalPnL)
	assert.Equal(t, 3.0, summary.TotalTrades)

	// derived series live on the index without the first observation
	prices := series(100, 101, 99, 102)
	assert.Equal(t, prices.Times()[1:], summary.Equity.Times())

	mean := returns.NanMean()
	std := returns.NanStd()
	assert.InDelta(t, mean/std*math.Sqrt(252*375), summary.Sharpe, 1e-9)
	assert.True(t, summary.SharpeDefined())
}

func TestEngineInvariants(t *testing.T) {
	prices := series(50, 52, 51, 55, 54, 49, 48, 53, 57, 56, 60)
	signals := series(1, 1, -1, 0.5, 1, -1, -1, 0, 1, 1, -0.25)
	engine := newRunEngine(t, prices, signals)

	returns, _ := engine.StrategyReturns()
	pnl, _ := engine.StrategyPnL()
	assert.Len(t, returns, len(prices)-1)
	assert.Len(t, pnl, len(prices)-1)

	summary, err := engine.Summary(false)
	require.NoError(t, err)

	equity := summary.Equity
	assert.Equal(t, pnl[0].Value, equity[0].Value)
	for i := 1; i < len(equity); i++ {
		assert.InDelta(t, equity[i-1].Value+pnl[i].Value, equity[i].Value, 1e-9)
		assert.Equal(t, math.Max(summary.RunningMax[i-1].Value, equity[i].Value), summary.RunningMax[i].Value)
	}
	low := math.Inf(1)
	for i, p := range summary.Drawdown {
		assert.LessOrEqual(t, p.Value, 0.0)
		assert.Equal(t, equity[i].Value-summary.RunningMax[i].Value, p.Value)
		low = math.Min(low, p.Value)
	}
	assert.Equal(t, low, summary.MaxDrawdown)
}

func TestEngineZeroSignalsGiveUndefinedSharpe(t *testing.T) {
	engine := newRunEngine(t, series(100, 101, 99, 102), series(0, 0, 0, 0))

	summary, err := engine.Summary(false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, summary.Equity.Values())
	assert.True(t, math.IsNaN(summary.Sharpe))
	assert.False(t, summary.SharpeDefined())
	assert.Equal(t, 0.0, summary.MaxDrawdown)
}

func TestEngineSummaryIsIdempotent(t *testing.T) {
	engine := newRunEngine(t, series(100, 101, 99, 102), series(0, 1, 1, -1))

	first, err := engine.Summary(false)
	require.NoError(t, err)
	second, err := engine.Summary(false)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, StateSummarized, engine.State())
}

func TestEngineStateMachine(t *testing.T) {
	strat := &staticStrategy{signals: series(0, 1, 1, -1)}
	engine, err := NewEngine(DefaultConfig(), series(100, 101, 99, 102), strat)
	require.NoError(t, err)
	assert.Equal(t, StateConstructed, engine.State())

	_, err = engine.Summary(false)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = engine.StrategyPnL()
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, engine.Run(context.Background()))
	assert.Equal(t, StateRun, engine.State())
	assert.ErrorIs(t, engine.Run(context.Background()), ErrInvalidState)
	assert.Equal(t, 1, strat.calls)
}

func TestEngineRunErrors(t *testing.T) {
	prices := series(100, 101, 99, 102)
	base := strategy.NewBase("abstract", prices, nil)

	tests := []struct {
		name  string
		strat strategy.Strategy
		want  error
	}{
		{name: "nil strategy", strat: nil, want: ErrNotImplementedInStrategy},
		{name: "abstract strategy", strat: &base, want: ErrNotImplementedInStrategy},
		{name: "short signals", strat: &staticStrategy{signals: series(0, 1, 1)}, want: ErrMisalignedSeries},
		{name: "shifted index", strat: &staticStrategy{signals: timeseries.FromValues(t0.Add(time.Second), time.Minute, 0, 1, 1, -1)}, want: ErrMisalignedSeries},
		{name: "infinite signal", strat: &staticStrategy{signals: series(0, math.Inf(1), 1, -1)}, want: ErrInvalidSignal},
		{name: "strategy error", strat: &staticStrategy{err: errors.New("boom")}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(DefaultConfig(), prices, tt.strat)
			require.NoError(t, err)
			err = engine.Run(context.Background())
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, StateConstructed, engine.State())
		})
	}
	t.Run("abstract strategy keeps cause", func(t *testing.T) {
		engine, err := NewEngine(DefaultConfig(), prices, &base)
		require.NoError(t, err)
		assert.ErrorIs(t, engine.Run(context.Background()), strategy.ErrNotImplemented)
	})
}

func TestNewEngineValidatesInput(t *testing.T) {
	strat := &staticStrategy{}
	_, err := NewEngine(DefaultConfig(), series(100), strat)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = NewEngine(DefaultConfig(), series(100, math.NaN()), strat)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	unordered := timeseries.Series{{Time: t0.Add(time.Minute), Value: 1}, {Time: t0, Value: 2}}
	_, err = NewEngine(DefaultConfig(), unordered, strat)
	assert.ErrorIs(t, err, timeseries.ErrUnordered)

	_, err = NewEngine(Config{}, series(1, 2), strat)
	assert.Error(t, err)
}

func TestEngineNaNSignalsAndZeroPrices(t *testing.T) {
	engine := newRunEngine(t, series(0, 2, 4, 3), series(1, 1, math.NaN(), 1))

	returns, _ := engine.StrategyReturns()
	assert.True(t, math.IsNaN(returns[0].Value), "zero base gives NaN return")
	assert.True(t, math.IsNaN(returns[1].Value), "NaN signal gives NaN return")
	assert.InDelta(t, -0.25, returns[2].Value, 1e-12)

	summary, err := engine.Summary(false)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 1}, summary.Equity.Values())
	assert.Equal(t, -1.0, summary.MaxDrawdown)
	// a single finite return has zero dispersion
	assert.False(t, summary.SharpeDefined())
}

func TestEngineReturnOffset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReturnOffset = 1
	engine, err := NewEngine(cfg, series(0, 1, 3), &staticStrategy{signals: series(1, 1, 1)})
	require.NoError(t, err)
	require.NoError(t, engine.Run(context.Background()))

	returns, _ := engine.StrategyReturns()
	assert.InDelta(t, 1.0, returns[0].Value, 1e-12)
	assert.InDelta(t, 1.0, returns[1].Value, 1e-12)
}

func TestEngineRunHonorsCancelledContext(t *testing.T) {
	engine, err := NewEngine(DefaultConfig(), series(1, 2, 3), &staticStrategy{signals: series(1, 1, 1)})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, engine.Run(ctx), context.Canceled)
}

func TestSummaryShowReportsWithoutAffectingStatistics(t *testing.T) {
	var out bytes.Buffer
	renderer := &failingRenderer{}
	shown := newRunEngine(t, series(100, 101, 99, 102), series(0, 1, 1, -1), WithReportWriter(&out), WithRenderer(renderer))
	quiet := newRunEngine(t, series(100, 101, 99, 102), series(0, 1, 1, -1))

	withReport, err := shown.Summary(true)
	require.NoError(t, err)
	without, err := quiet.Summary(false)
	require.NoError(t, err)

	assert.Equal(t, 1, renderer.calls)
	assert.Contains(t, out.String(), "Absolute P&L :")
	assert.Contains(t, out.String(), "-4.00")
	assert.Contains(t, out.String(), "-5.00")
	assert.True(t, withReport.Equity.Equal(without.Equity))
	assert.Equal(t, without.MaxDrawdown, withReport.MaxDrawdown)
	assert.InDelta(t, without.Sharpe, withReport.Sharpe, 1e-12)
}

func TestSharpeRatio(t *testing.T) {
	returns := series(0.01, 0.02, -0.01, 0.03)
	sharpe := SharpeRatio(returns, 1)
	assert.InDelta(t, 0.0125/math.Sqrt(0.000218750), sharpe, 1e-9)

	assert.True(t, math.IsNaN(SharpeRatio(series(0.01, 0.01), 1)))
	assert.True(t, math.IsNaN(SharpeRatio(timeseries.Series{}, 1)))
}
