package strategy

import (
	"context"

	"github.com/yourusername/vector-bt/internal/timeseries"
)

// SMACrossoverConfig configures SMACrossover
type SMACrossoverConfig struct {
	Fast     int  `param:"fast" validate:"gte=1,ltfield=Slow"`
	Slow     int  `param:"slow" validate:"gte=2"`
	Lag      int  `param:"lag" validate:"gte=0"`
	LongOnly bool `param:"long_only"`
}

// SMACrossover is long when the fast average is above the slow one and short below it
type SMACrossover struct {
	Base
	Config SMACrossoverConfig
}

// NewSMACrossover builds the strategy from a parameter mapping
func NewSMACrossover(prices timeseries.Series, params Params) (Strategy, error) {
	cfg := SMACrossoverConfig{Fast: 10, Slow: 30, Lag: 1}
	if err := DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return &SMACrossover{Base: NewBase("sma_crossover", prices, params), Config: cfg}, nil
}

// GetSignals returns the lagged crossover positions
func (s *SMACrossover) GetSignals(ctx context.Context) (timeseries.Series, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	fast := s.SMA(s.Config.Fast)
	slow := s.SMA(s.Config.Slow)
	spread, err := fast.Sub(slow)
	if err != nil {
		return nil, err
	}
	positions := spread.Map(func(v float64) float64 {
		position := sign(v)
		if s.Config.LongOnly && position < 0 {
			return 0
		}
		return position
	})
	return positions.Shift(s.Config.Lag, 0), nil
}
