// Package logger provides backtest run logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for engine runs and reports.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunCompleted logs a finished engine run.
func (bl *BacktestLogger) LogRunCompleted(strategyName string, bars int, durationMs float64) {
	bl.WithFields(logrus.Fields{
		"strategy":    strategyName,
		"bars":        bars,
		"duration_ms": durationMs,
	}).Debug("Backtest run completed")
}

// LogSummary logs the headline statistics of a summary.
func (bl *BacktestLogger) LogSummary(strategyName string, finalPnL, sharpe, maxDrawdown float64) {
	bl.WithFields(logrus.Fields{
		"strategy":     strategyName,
		"absolute_pnl": loggable(finalPnL),
		"sharpe_ratio": loggable(sharpe),
		"max_drawdown": loggable(maxDrawdown),
	}).Debug("Backtest summary computed")
}

// LogReportFailure logs a report sink that could not be written.
func (bl *BacktestLogger) LogReportFailure(strategyName, sink string, err error) {
	bl.WithError(err).WithFields(logrus.Fields{
		"strategy": strategyName,
		"sink":     sink,
	}).Warn("Failed to emit backtest report")
}
