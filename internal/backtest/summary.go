package backtest

import (
	"encoding/json"
	"math"

	"github.com/yourusername/vector-bt/internal/timeseries"
)

// Summary holds the performance statistics of one run. It is created once per
// engine and must be treated as read-only.
type Summary struct {
	Equity      timeseries.Series
	RunningMax  timeseries.Series
	Drawdown    timeseries.Series
	Sharpe      float64
	MaxDrawdown float64
	FinalPnL    float64
	TotalTrades float64
	Prices      timeseries.Series
	Positions   timeseries.Series
}

// SharpeDefined reports whether the Sharpe ratio could be computed. It is NaN
// when strategy returns have zero dispersion or no finite values.
func (s *Summary) SharpeDefined() bool {
	return !math.IsNaN(s.Sharpe)
}

// ReportSeries returns the four aligned series consumed by renderers
func (s *Summary) ReportSeries() ReportSeries {
	return ReportSeries{
		Prices:    s.Prices,
		Positions: s.Positions,
		Equity:    s.Equity,
		Drawdown:  s.Drawdown,
	}
}

// ToJSON exports scalar statistics to JSON; undefined values become null
func (s *Summary) ToJSON() string {
	data, _ := json.Marshal(map[string]*float64{
		"absolute_pnl": finiteOrNil(s.FinalPnL),
		"sharpe_ratio": finiteOrNil(s.Sharpe),
		"max_drawdown": finiteOrNil(s.MaxDrawdown),
		"total_trades": finiteOrNil(s.TotalTrades),
	})
	return string(data)
}

// SharpeRatio returns nanmean/nanstd of returns scaled by factor. The result is
// NaN when the standard deviation is zero or undefined.
func SharpeRatio(returns timeseries.Series, factor float64) float64 {
	mean := returns.NanMean()
	std := returns.NanStd()
	if math.IsNaN(mean) || math.IsNaN(std) || std == 0 {
		return math.NaN()
	}
	return mean / std * factor
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
