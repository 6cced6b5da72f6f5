// Package strategy defines the signal-generation capability driven by the backtest engine.
package strategy

import (
	"context"
	"errors"
	"sort"

	"github.com/yourusername/vector-bt/internal/timeseries"
)

// ErrNotImplemented is returned by strategies that do not supply signals
var ErrNotImplemented = errors.New("strategy must implement GetSignals")

// Strategy produces position weights aligned to the price index it was built with
type Strategy interface {
	Name() string
	GetSignals(ctx context.Context) (timeseries.Series, error)
	GetParameters() Params
}

// Params maps parameter names to values
type Params map[string]any

// Clone creates a shallow copy of the parameter set
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for k, v := range p {
		clone[k] = v
	}
	return clone
}

// Keys returns parameter names in sorted order
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Factory builds a strategy variant for one parameter combination
type Factory func(prices timeseries.Series, params Params) (Strategy, error)

// Metadata describes a strategy for reports
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Params `json:"parameters"`
}
