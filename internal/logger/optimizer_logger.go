// Package logger provides grid-search logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// OptimizerLogger provides dedicated logging for parameter searches.
type OptimizerLogger struct {
	*logrus.Entry
}

// NewOptimizerLogger creates a new optimizer logger.
func NewOptimizerLogger(baseLogger *logrus.Logger) *OptimizerLogger {
	return &OptimizerLogger{
		Entry: baseLogger.WithField("component", "optimizer"),
	}
}

// LogSearchStarted logs the start of a grid search.
func (ol *OptimizerLogger) LogSearchStarted(runID, category string, combinations, workers int) {
	ol.WithFields(logrus.Fields{
		"run_id":       runID,
		"category":     category,
		"combinations": combinations,
		"workers":      workers,
	}).Info("Grid search started")
}

// LogCombinationSkipped logs a parameter combination that failed to evaluate.
func (ol *OptimizerLogger) LogCombinationSkipped(runID string, index int, params map[string]any, err error) {
	ol.WithError(err).WithFields(logrus.Fields{
		"run_id": runID,
		"index":  index,
		"params": params,
	}).Warn("Skipping parameter combination")
}

// LogNewBest logs an improvement of the best score.
func (ol *OptimizerLogger) LogNewBest(runID string, index int, params map[string]any, score float64) {
	ol.WithFields(logrus.Fields{
		"run_id": runID,
		"index":  index,
		"params": params,
		"score":  loggable(score),
	}).Debug("New best parameter combination")
}

// LogProgress logs periodic search progress.
func (ol *OptimizerLogger) LogProgress(runID string, done, total int, bestScore float64) {
	ol.WithFields(logrus.Fields{
		"run_id":     runID,
		"done":       done,
		"total":      total,
		"best_score": loggable(bestScore),
	}).Info("Grid search progress")
}

// LogSearchCompleted logs the result of a grid search.
func (ol *OptimizerLogger) LogSearchCompleted(runID, category string, bestParams map[string]any, bestScore float64, evaluated, skipped int, durationMs float64) {
	ol.WithFields(logrus.Fields{
		"run_id":      runID,
		"category":    category,
		"best_params": bestParams,
		"best_score":  loggable(bestScore),
		"evaluated":   evaluated,
		"skipped":     skipped,
		"duration_ms": durationMs,
	}).Info("Grid search completed")
}

// LogWalkForwardWindow logs one walk-forward window.
func (ol *OptimizerLogger) LogWalkForwardWindow(window int, params map[string]any, trainScore, testPnL float64) {
	ol.WithFields(logrus.Fields{
		"window":      window,
		"best_params": params,
		"train_score": loggable(trainScore),
		"test_pnl":    loggable(testPnL),
	}).Info("Walk-forward window evaluated")
}
