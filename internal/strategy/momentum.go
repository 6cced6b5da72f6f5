package strategy

import (
	"context"
	"math"

	"github.com/yourusername/vector-bt/internal/timeseries"
)

// MomentumConfig configures Momentum
type MomentumConfig struct {
	Lookback  int     `param:"lookback" validate:"gte=1"`
	Threshold float64 `param:"threshold" validate:"gte=0"`
	Lag       int     `param:"lag" validate:"gte=0"`
}

// Momentum follows the sign of the lookback price change when it clears the threshold
type Momentum struct {
	Base
	Config MomentumConfig
}

// NewMomentum builds the strategy from a parameter mapping
func NewMomentum(prices timeseries.Series, params Params) (Strategy, error) {
	cfg := MomentumConfig{Lookback: 10, Lag: 1}
	if err := DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return &Momentum{Base: NewBase("momentum", prices, params), Config: cfg}, nil
}

// GetSignals returns the lagged momentum positions
func (m *Momentum) GetSignals(ctx context.Context) (timeseries.Series, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	positions := make(timeseries.Series, len(m.Prices))
	for i, p := range m.Prices {
		position := 0.0
		if i >= m.Config.Lookback {
			change := p.Value - m.Prices[i-m.Config.Lookback].Value
			if math.Abs(change) > m.Config.Threshold {
				position = sign(change)
			}
		}
		positions[i] = timeseries.Point{Time: p.Time, Value: position}
	}
	return positions.Shift(m.Config.Lag, 0), nil
}
