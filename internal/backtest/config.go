package backtest

import (
	"fmt"
	"math"

	"github.com/yourusername/vector-bt/internal/config"
)

// Default annualization: trading days per year and intraday bars per day
const (
	DefaultAnnualizationDays = 252
	DefaultBarsPerDay        = 375
)

// Config holds engine settings
type Config struct {
	AnnualizationDays float64
	BarsPerDay        float64
	// ReturnOffset is added to the previous value when computing percentage
	// returns; 1 treats the input as a P&L series around zero.
	ReturnOffset float64
}

// DefaultConfig returns the intraday defaults
func DefaultConfig() Config {
	return Config{
		AnnualizationDays: DefaultAnnualizationDays,
		BarsPerDay:        DefaultBarsPerDay,
	}
}

// FromConfig converts app config to engine config
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}
	bt := Config{
		AnnualizationDays: cfg.AnnualizationDays,
		BarsPerDay:        cfg.BarsPerDay,
		ReturnOffset:      cfg.ReturnOffset,
	}
	return bt, bt.Validate()
}

// Validate validates engine config parameters
func (c Config) Validate() error {
	if c.AnnualizationDays <= 0 {
		return fmt.Errorf("annualization days must be positive")
	}
	if c.BarsPerDay <= 0 {
		return fmt.Errorf("bars per day must be positive")
	}
	if math.IsNaN(c.ReturnOffset) || math.IsInf(c.ReturnOffset, 0) {
		return fmt.Errorf("return offset must be finite")
	}
	return nil
}

// AnnualizationFactor is the Sharpe ratio scale, sqrt(days * bars per day)
func (c Config) AnnualizationFactor() float64 {
	return math.Sqrt(c.AnnualizationDays * c.BarsPerDay)
}
