package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

var start = time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)

func trendingPrices() timeseries.Series {
	return timeseries.FromValues(start, time.Minute, 10, 11, 12, 13, 14, 13, 12, 11, 10, 9)
}

func TestBaseStrategyHasNoSignals(t *testing.T) {
	base := NewBase("abstract", trendingPrices(), Params{"x": 1})
	_, err := base.GetSignals(context.Background())
	require.ErrorIs(t, err, ErrNotImplemented)
	assert.Equal(t, "abstract", base.Name())
	assert.Equal(t, Params{"x": 1}, base.GetParameters())
}

func TestDecodeParams(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		want    SMACrossoverConfig
		wantErr bool
	}{
		{name: "defaults", params: Params{}, want: SMACrossoverConfig{Fast: 10, Slow: 30, Lag: 1}},
		{name: "weakly typed", params: Params{"fast": "3", "slow": 5.0, "long_only": "true"}, want: SMACrossoverConfig{Fast: 3, Slow: 5, Lag: 1, LongOnly: true}},
		{name: "unknown key", params: Params{"fats": 3}, wantErr: true},
		{name: "fast not below slow", params: Params{"fast": 5, "slow": 5}, wantErr: true},
		{name: "negative lag", params: Params{"lag": -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SMACrossoverConfig{Fast: 10, Slow: 30, Lag: 1}
			err := DecodeParams(tt.params, &cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestSMACrossoverSignals(t *testing.T) {
	prices := trendingPrices()
	strat, err := NewSMACrossover(prices, Params{"fast": 2, "slow": 3, "lag": 0})
	require.NoError(t, err)

	signals, err := strat.GetSignals(context.Background())
	require.NoError(t, err)
	require.NoError(t, prices.Aligned(signals))

	// warm-up bars carry no position
	assert.Equal(t, 0.0, signals[0].Value)
	assert.Equal(t, 0.0, signals[1].Value)
	assert.Equal(t, 1.0, signals[3].Value)
	assert.Equal(t, -1.0, signals[9].Value)
}

func TestSMACrossoverLagAndLongOnly(t *testing.T) {
	prices := trendingPrices()
	unlagged, err := NewSMACrossover(prices, Params{"fast": 2, "slow": 3, "lag": 0})
	require.NoError(t, err)
	lagged, err := NewSMACrossover(prices, Params{"fast": 2, "slow": 3, "lag": 1, "long_only": true})
	require.NoError(t, err)

	raw, err := unlagged.GetSignals(context.Background())
	require.NoError(t, err)
	shifted, err := lagged.GetSignals(context.Background())
	require.NoError(t, err)

	for i := 1; i < len(raw); i++ {
		want := raw[i-1].Value
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, shifted[i].Value, "bar %d", i)
	}
}

func TestMeanReversionHoldsUntilExit(t *testing.T) {
	prices := timeseries.FromValues(start, time.Minute, 10, 10.1, 9.9, 10, 13, 12, 10.05, 10, 6, 9.9)
	strat, err := NewMeanReversion(prices, Params{"lookback": 4, "entry_z": 1.2, "exit_z": 0.3, "lag": 0})
	require.NoError(t, err)

	signals, err := strat.GetSignals(context.Background())
	require.NoError(t, err)
	require.Len(t, signals, len(prices))
	assert.Equal(t, -1.0, signals[4].Value, "spike above band goes short")
	assert.Equal(t, 1.0, signals[8].Value, "drop below band goes long")
	for _, p := range signals {
		assert.Contains(t, []float64{-1, 0, 1}, p.Value)
	}
}

func TestMeanReversionRejectsInvertedBands(t *testing.T) {
	_, err := NewMeanReversion(trendingPrices(), Params{"entry_z": 0.5, "exit_z": 1})
	assert.Error(t, err)
}

func TestMomentumSignals(t *testing.T) {
	strat, err := NewMomentum(trendingPrices(), Params{"lookback": 2, "lag": 0})
	require.NoError(t, err)
	signals, err := strat.GetSignals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 1, 0, -1, -1, -1, -1}, signals.Values())
}

func TestGetSignalsHonorsCancelledContext(t *testing.T) {
	strat, err := NewMomentum(trendingPrices(), Params{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = strat.GetSignals(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIndicatorCacheReusesSeries(t *testing.T) {
	cache := NewIndicatorCache(time.Minute)
	prices := trendingPrices()
	calls := 0
	compute := func() timeseries.Series {
		calls++
		return prices.RollingMean(3)
	}

	first := cache.Get(prices, "sma", 3, compute)
	second := cache.Get(prices, "sma", 3, compute)
	assert.Equal(t, 1, calls)
	assert.True(t, first.Equal(second))

	cache.Get(prices, "sma", 4, compute)
	other := prices.Map(func(v float64) float64 { return v * 2 })
	cache.Get(other, "sma", 3, compute)
	assert.Equal(t, 3, calls)

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(3), stats.Misses)
	assert.Equal(t, 3, stats.Entries)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"mean_reversion", "momentum", "sma_crossover"}, Names())
	factory, err := Lookup("momentum")
	require.NoError(t, err)
	strat, err := factory(trendingPrices(), Params{"lookback": 3})
	require.NoError(t, err)
	assert.Equal(t, "momentum", strat.Name())

	_, err = Lookup("nope")
	assert.Error(t, err)
}
