package strategy

import (
	"context"
	"math"

	"github.com/yourusername/vector-bt/internal/timeseries"
)

// MeanReversionConfig configures MeanReversion
type MeanReversionConfig struct {
	Lookback int     `param:"lookback" validate:"gte=2"`
	EntryZ   float64 `param:"entry_z" validate:"gt=0,gtfield=ExitZ"`
	ExitZ    float64 `param:"exit_z" validate:"gte=0"`
	Lag      int     `param:"lag" validate:"gte=0"`
}

// MeanReversion fades z-score extremes of price against its rolling mean and
// holds the position until the z-score falls back inside the exit band.
type MeanReversion struct {
	Base
	Config MeanReversionConfig
}

// NewMeanReversion builds the strategy from a parameter mapping
func NewMeanReversion(prices timeseries.Series, params Params) (Strategy, error) {
	cfg := MeanReversionConfig{Lookback: 20, EntryZ: 2, ExitZ: 0.5, Lag: 1}
	if err := DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return &MeanReversion{Base: NewBase("mean_reversion", prices, params), Config: cfg}, nil
}

// GetSignals returns the lagged band positions
func (m *MeanReversion) GetSignals(ctx context.Context) (timeseries.Series, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	mean := m.SMA(m.Config.Lookback)
	std := m.RollingStd(m.Config.Lookback)

	positions := make(timeseries.Series, len(m.Prices))
	position := 0.0
	for i, p := range m.Prices {
		z := math.NaN()
		if sd := std[i].Value; sd > 0 {
			z = (p.Value - mean[i].Value) / sd
		}
		switch {
		case math.IsNaN(z):
		case z >= m.Config.EntryZ:
			position = -1
		case z <= -m.Config.EntryZ:
			position = 1
		case math.Abs(z) <= m.Config.ExitZ:
			position = 0
		}
		positions[i] = timeseries.Point{Time: p.Time, Value: position}
	}
	return positions.Shift(m.Config.Lag, 0), nil
}
