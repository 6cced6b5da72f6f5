package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

var validate = validator.New()

// Base holds the inputs every strategy is constructed with. On its own it
// supplies no signals.
type Base struct {
	NameValue string
	Prices    timeseries.Series
	Params    Params
	Cache     *IndicatorCache
}

// NewBase creates a base strategy over prices
func NewBase(name string, prices timeseries.Series, params Params) Base {
	return Base{
		NameValue: name,
		Prices:    prices,
		Params:    params.Clone(),
		Cache:     DefaultIndicatorCache,
	}
}

// Name returns strategy name
func (b *Base) Name() string {
	return b.NameValue
}

// GetSignals fails: concrete strategies must override it
func (b *Base) GetSignals(ctx context.Context) (timeseries.Series, error) {
	_ = ctx
	return nil, fmt.Errorf("%s: %w", b.NameValue, ErrNotImplemented)
}

// GetParameters returns the parameters the strategy was built with
func (b *Base) GetParameters() Params {
	return b.Params.Clone()
}

// SMA returns the cached simple moving average of the prices
func (b *Base) SMA(window int) timeseries.Series {
	return b.cache().Get(b.Prices, "sma", window, func() timeseries.Series {
		return b.Prices.RollingMean(window)
	})
}

// RollingStd returns the cached rolling standard deviation of the prices
func (b *Base) RollingStd(window int) timeseries.Series {
	return b.cache().Get(b.Prices, "std", window, func() timeseries.Series {
		return b.Prices.RollingStd(window)
	})
}

func (b *Base) cache() *IndicatorCache {
	if b.Cache == nil {
		return DefaultIndicatorCache
	}
	return b.Cache
}

// DecodeParams fills target, a pointer to a typed config struct holding its
// defaults, from the generic parameter mapping and validates it.
func DecodeParams(params Params, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "param",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to build parameter decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(params)); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

// sign maps a value to -1, 0 or +1; NaN maps to 0
func sign(v float64) float64 {
	switch {
	case math.IsNaN(v) || v == 0:
		return 0
	case v > 0:
		return 1
	default:
		return -1
	}
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
