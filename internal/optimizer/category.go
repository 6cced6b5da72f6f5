package optimizer

import (
	"fmt"

	"github.com/yourusername/vector-bt/internal/backtest"
)

// Category names the summary statistic a search maximizes
type Category string

const (
	// CategorySharpe maximizes the annualized Sharpe ratio
	CategorySharpe Category = "sharpe"
	// CategoryPnL maximizes the final cumulative P&L
	CategoryPnL Category = "pnl"
)

// ParseCategory validates a category name
func ParseCategory(name string) (Category, error) {
	switch c := Category(name); c {
	case CategorySharpe, CategoryPnL:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidCategory, name, CategorySharpe, CategoryPnL)
	}
}

// Score extracts the category's statistic from a summary. The P&L category
// scores the last value of the cumulative P&L curve.
func (c Category) Score(summary *backtest.Summary) float64 {
	if c == CategoryPnL {
		return summary.FinalPnL
	}
	return summary.Sharpe
}

func (c Category) String() string {
	return string(c)
}
