package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/vector-bt/internal/backtest"
	"github.com/yourusername/vector-bt/internal/config"
	"github.com/yourusername/vector-bt/internal/metrics"
	"github.com/yourusername/vector-bt/internal/strategy"
)

// WalkForwardConfig sizes the rolling windows in bars
type WalkForwardConfig struct {
	TrainBars int
	TestBars  int
	// StepBars defaults to TestBars
	StepBars int
}

// WalkForwardConfigFrom converts app config
func WalkForwardConfigFrom(cfg config.WalkForwardConfig) WalkForwardConfig {
	return WalkForwardConfig{
		TrainBars: cfg.TrainBars,
		TestBars:  cfg.TestBars,
		StepBars:  cfg.StepBars,
	}
}

// Validate checks window sizes
func (c WalkForwardConfig) Validate() error {
	if c.TrainBars < 2 {
		return fmt.Errorf("train window must hold at least 2 bars, got %d", c.TrainBars)
	}
	if c.TestBars < 1 {
		return fmt.Errorf("test window must hold at least 1 bar, got %d", c.TestBars)
	}
	if c.StepBars < 0 {
		return fmt.Errorf("step must not be negative, got %d", c.StepBars)
	}
	return nil
}

// WalkForwardWindow is one train/test split. The test slice starts on the
// last training bar so its first return covers the first test bar.
type WalkForwardWindow struct {
	WindowID   int             `json:"window_id"`
	TrainStart time.Time       `json:"train_start"`
	TrainEnd   time.Time       `json:"train_end"`
	TestStart  time.Time       `json:"test_start"`
	TestEnd    time.Time       `json:"test_end"`
	BestParams strategy.Params `json:"best_params"`
	TrainScore float64         `json:"-"`
	TrainPnL   float64         `json:"-"`
	TestScore  float64         `json:"-"`
	TestPnL    float64         `json:"-"`
	Skipped    int             `json:"skipped"`
	// Err is set when no parameters won on the training slice or the test run failed
	Err error `json:"-"`
}

// WalkForwardResult represents walk-forward optimization result
type WalkForwardResult struct {
	RunID            uuid.UUID           `json:"run_id"`
	Category         Category            `json:"category"`
	Windows          []WalkForwardWindow `json:"windows"`
	TotalTestPnL     float64             `json:"total_test_pnl"`
	ConsistencyScore float64             `json:"consistency_score"`
	OverfitScore     float64             `json:"overfit_score"`
	Duration         time.Duration       `json:"duration_ns"`
}

// WalkForward grid-searches each training window and replays the winning
// parameters on the following test window.
func (o *Optimizer) WalkForward(ctx context.Context, grid Grid, category string, cfg WalkForwardConfig) (*WalkForwardResult, error) {
	cat, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := grid.Combinations(); err != nil {
		return nil, err
	}
	if cfg.StepBars == 0 {
		cfg.StepBars = cfg.TestBars
	}

	n := len(o.prices)
	if cfg.TrainBars+cfg.TestBars > n {
		return nil, fmt.Errorf("%w: walk-forward needs %d bars, got %d",
			backtest.ErrInsufficientData, cfg.TrainBars+cfg.TestBars, n)
	}

	start := time.Now()
	result := &WalkForwardResult{RunID: uuid.New(), Category: cat}
	windowID := 0

	for current := 0; current+cfg.TrainBars+cfg.TestBars <= n; current += cfg.StepBars {
		trainEnd := current + cfg.TrainBars
		testEnd := trainEnd + cfg.TestBars
		train := o.prices.Slice(current, trainEnd)
		test := o.prices.Slice(trainEnd-1, testEnd)

		windowID++
		window := WalkForwardWindow{
			WindowID:   windowID,
			TrainStart: train[0].Time,
			TrainEnd:   train[len(train)-1].Time,
			TestStart:  o.prices[trainEnd].Time,
			TestEnd:    test[len(test)-1].Time,
			TrainScore: math.Inf(-1),
			TrainPnL:   math.NaN(),
			TestScore:  math.NaN(),
			TestPnL:    math.NaN(),
		}

		search, err := o.search(ctx, train, grid, cat.String(), "walk_forward_window")
		if err != nil {
			metrics.RecordSearch("walk_forward", metrics.StatusFailure, time.Since(start).Seconds())
			return nil, fmt.Errorf("window %d: %w", windowID, err)
		}
		window.Skipped = search.Skipped
		if !search.Found() {
			window.Err = fmt.Errorf("no parameters scored on the training window")
			result.Windows = append(result.Windows, window)
			continue
		}
		window.BestParams = search.BestParams
		window.TrainScore = search.BestScore
		window.TrainPnL = search.Evaluations[search.BestIndex].FinalPnL

		summary, err := o.runCombination(ctx, test, search.BestParams)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			window.Err = err
		} else {
			window.TestScore = cat.Score(summary)
			window.TestPnL = summary.FinalPnL
		}
		o.log.LogWalkForwardWindow(windowID, window.BestParams, window.TrainScore, window.TestPnL)
		result.Windows = append(result.Windows, window)
	}

	result.TotalTestPnL = totalTestPnL(result.Windows)
	result.ConsistencyScore = CalculateConsistency(result.Windows)
	result.OverfitScore = calculateOverfitScore(result.Windows)
	result.Duration = time.Since(start)
	metrics.RecordSearch("walk_forward", metrics.StatusSuccess, result.Duration.Seconds())
	return result, nil
}

// Evaluated returns the windows that produced a test result
func (w *WalkForwardResult) Evaluated() []WalkForwardWindow {
	var windows []WalkForwardWindow
	for _, win := range w.Windows {
		if win.Err == nil {
			windows = append(windows, win)
		}
	}
	return windows
}

// CalculateConsistency calculates the fraction of evaluated windows with a
// positive test P&L
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	evaluated := 0
	profitable := 0
	for _, w := range windows {
		if w.Err != nil {
			continue
		}
		evaluated++
		if w.TestPnL > 0 {
			profitable++
		}
	}
	if evaluated == 0 {
		return 0
	}
	return float64(profitable) / float64(evaluated)
}

// calculateOverfitScore compares summed train and test P&L of evaluated windows
func calculateOverfitScore(windows []WalkForwardWindow) float64 {
	trainPnL := 0.0
	testPnL := 0.0
	for _, w := range windows {
		if w.Err != nil {
			continue
		}
		trainPnL += w.TrainPnL
		testPnL += w.TestPnL
	}
	if trainPnL == 0 {
		return 0
	}
	return (trainPnL - testPnL) / trainPnL
}

func totalTestPnL(windows []WalkForwardWindow) float64 {
	total := 0.0
	for _, w := range windows {
		if w.Err == nil && !math.IsNaN(w.TestPnL) {
			total += w.TestPnL
		}
	}
	return total
}

// ToJSON renders the result; non-finite statistics become null
func (w *WalkForwardResult) ToJSON() string {
	type windowJSON struct {
		WalkForwardWindow
		TrainScore *float64 `json:"train_score"`
		TrainPnL   *float64 `json:"train_pnl"`
		TestScore  *float64 `json:"test_score"`
		TestPnL    *float64 `json:"test_pnl"`
		Error      string   `json:"error,omitempty"`
	}
	windows := make([]windowJSON, len(w.Windows))
	for i, win := range w.Windows {
		windows[i] = windowJSON{
			WalkForwardWindow: win,
			TrainScore:        finiteOrNil(win.TrainScore),
			TrainPnL:          finiteOrNil(win.TrainPnL),
			TestScore:         finiteOrNil(win.TestScore),
			TestPnL:           finiteOrNil(win.TestPnL),
		}
		if win.Err != nil {
			windows[i].Error = win.Err.Error()
		}
	}
	out := struct {
		*WalkForwardResult
		Windows []windowJSON `json:"windows"`
	}{WalkForwardResult: w, Windows: windows}
	data, _ := json.Marshal(out)
	return string(data)
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
