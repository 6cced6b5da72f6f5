package backtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/vector-bt/internal/logger"
	"github.com/yourusername/vector-bt/internal/metrics"
	"github.com/yourusername/vector-bt/internal/strategy"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

// Engine applies one strategy's signals to one price series. It is run once,
// summarized, and discarded.
type Engine struct {
	config   Config
	prices   timeseries.Series
	strategy strategy.Strategy
	logger   *logrus.Logger
	log      *logger.BacktestLogger

	reportWriter io.Writer
	renderer     Renderer

	state        State
	signals      timeseries.Series
	returnsStrat timeseries.Series
	pnlStrat     timeseries.Series
	summary      *Summary
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) {
		e.logger = log
	}
}

// WithReportWriter sets where Summary(true) writes the text report
func WithReportWriter(w io.Writer) Option {
	return func(e *Engine) {
		e.reportWriter = w
	}
}

// WithRenderer sets the chart sink used by Summary(true)
func WithRenderer(r Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg Config, prices timeseries.Series, strat strategy.Strategy, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientData, len(prices))
	}
	if err := prices.Validate(); err != nil {
		return nil, fmt.Errorf("invalid prices: %w", err)
	}
	for i, p := range prices {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("%w: index %d is %v", ErrInvalidPrice, i, p.Value)
		}
	}

	e := &Engine{
		config:   cfg,
		prices:   prices,
		strategy: strat,
		state:    StateConstructed,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Discard()
	}
	e.log = logger.NewBacktestLogger(e.logger)
	return e, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// State returns the lifecycle state
func (e *Engine) State() State {
	return e.state
}

// Signals returns the positions obtained by Run
func (e *Engine) Signals() (timeseries.Series, error) {
	if e.state == StateConstructed {
		return nil, fmt.Errorf("%w: signals read before run", ErrInvalidState)
	}
	return e.signals, nil
}

// StrategyReturns returns signal-weighted percentage returns, one per bar after the first
func (e *Engine) StrategyReturns() (timeseries.Series, error) {
	if e.state == StateConstructed {
		return nil, fmt.Errorf("%w: returns read before run", ErrInvalidState)
	}
	return e.returnsStrat, nil
}

// StrategyPnL returns signal-weighted price differences, one per bar after the first
func (e *Engine) StrategyPnL() (timeseries.Series, error) {
	if e.state == StateConstructed {
		return nil, fmt.Errorf("%w: pnl read before run", ErrInvalidState)
	}
	return e.pnlStrat, nil
}

// Run obtains signals and computes strategy returns and P&L
func (e *Engine) Run(ctx context.Context) error {
	if e.state != StateConstructed {
		return fmt.Errorf("%w: run called in state %s", ErrInvalidState, e.state)
	}
	if e.strategy == nil {
		return ErrNotImplementedInStrategy
	}

	start := time.Now()
	err := e.run(ctx)
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
		if errors.Is(err, context.DeadlineExceeded) {
			status = metrics.StatusTimeout
		}
	}
	elapsed := time.Since(start)
	metrics.RecordEngineRun(e.strategy.Name(), status, elapsed.Seconds())
	if err == nil {
		e.log.LogRunCompleted(e.strategy.Name(), len(e.prices), float64(elapsed.Microseconds())/1000)
	}
	return err
}

func (e *Engine) run(ctx context.Context) error {
	signalStart := time.Now()
	signals, err := e.strategy.GetSignals(ctx)
	metrics.RecordSignalDuration(e.strategy.Name(), time.Since(signalStart).Seconds())
	if err != nil {
		if errors.Is(err, strategy.ErrNotImplemented) {
			return fmt.Errorf("%w: %w", ErrNotImplementedInStrategy, err)
		}
		return fmt.Errorf("strategy %s failed: %w", e.strategy.Name(), err)
	}
	if err := e.prices.Aligned(signals); err != nil {
		return fmt.Errorf("%w: signals: %w", ErrMisalignedSeries, err)
	}
	for i, p := range signals {
		if math.IsInf(p.Value, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrInvalidSignal, i, p.Value)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	returns := e.prices.PctChange(e.config.ReturnOffset)
	pnl := e.prices.Diff()
	positions := signals.Drop(1)

	returnsStrat, err := positions.Mul(returns)
	if err != nil {
		return fmt.Errorf("%w: returns: %w", ErrMisalignedSeries, err)
	}
	pnlStrat, err := positions.Mul(pnl)
	if err != nil {
		return fmt.Errorf("%w: pnl: %w", ErrMisalignedSeries, err)
	}

	e.signals = signals
	e.returnsStrat = returnsStrat
	e.pnlStrat = pnlStrat
	e.state = StateRun

	return nil
}

// Summary derives performance statistics from the run. Repeated calls return
// the same summary. When show is set the text report and charts are emitted;
// reporting failures are logged and never affect the returned statistics.
func (e *Engine) Summary(show bool) (*Summary, error) {
	switch e.state {
	case StateConstructed:
		return nil, fmt.Errorf("%w: summary requested before run", ErrInvalidState)
	case StateRun:
		e.summary = e.computeSummary()
		e.state = StateSummarized
		e.log.LogSummary(e.strategy.Name(), e.summary.FinalPnL, e.summary.Sharpe, e.summary.MaxDrawdown)
	}

	if show {
		e.report(e.summary)
	}
	return e.summary, nil
}

func (e *Engine) computeSummary() *Summary {
	equity := e.pnlStrat.CumSum()
	runningMax := equity.CumMax()
	drawdown, _ := equity.Sub(runningMax)
	maxDrawdown, _ := drawdown.Min()
	finalPnL, _ := equity.Last()

	return &Summary{
		Equity:      equity,
		RunningMax:  runningMax,
		Drawdown:    drawdown,
		Sharpe:      SharpeRatio(e.returnsStrat, e.config.AnnualizationFactor()),
		MaxDrawdown: maxDrawdown,
		FinalPnL:    finalPnL,
		TotalTrades: e.signals.AbsDiffSum(),
		Prices:      e.prices.Drop(1),
		Positions:   e.signals.Drop(1),
	}
}

func (e *Engine) report(summary *Summary) {
	name := ""
	if e.strategy != nil {
		name = e.strategy.Name()
	}
	if e.reportWriter != nil {
		if _, err := io.WriteString(e.reportWriter, FormatReport(summary)); err != nil {
			e.log.LogReportFailure(name, "writer", err)
		}
	}
	if e.renderer != nil {
		if err := e.renderer.Render(summary.ReportSeries()); err != nil {
			e.log.LogReportFailure(name, "renderer", err)
		}
	}
}
