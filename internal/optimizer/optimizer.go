// Package optimizer searches a strategy's parameter grid for the combination
// that maximizes a backtest statistic.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yourusername/vector-bt/internal/backtest"
	"github.com/yourusername/vector-bt/internal/logger"
	"github.com/yourusername/vector-bt/internal/metrics"
	"github.com/yourusername/vector-bt/internal/strategy"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

// DefaultProgressInterval throttles progress log lines
const DefaultProgressInterval = 5 * time.Second

// Optimizer evaluates every combination of a grid with a fresh strategy and engine
type Optimizer struct {
	factory      strategy.Factory
	prices       timeseries.Series
	config       backtest.Config
	strategyName string

	workers          int
	timeout          time.Duration
	progress         io.Writer
	progressInterval time.Duration

	logger *logrus.Logger
	log    *logger.OptimizerLogger
}

// Option configures an Optimizer
type Option func(*Optimizer)

// WithWorkers sets how many combinations are evaluated concurrently
func WithWorkers(n int) Option {
	return func(o *Optimizer) {
		o.workers = n
	}
}

// WithTimeout bounds each combination's evaluation; zero disables it
func WithTimeout(d time.Duration) Option {
	return func(o *Optimizer) {
		o.timeout = d
	}
}

// WithProgress draws a progress bar on w
func WithProgress(w io.Writer) Option {
	return func(o *Optimizer) {
		o.progress = w
	}
}

// WithProgressInterval sets the minimum gap between progress log lines
func WithProgressInterval(d time.Duration) Option {
	return func(o *Optimizer) {
		o.progressInterval = d
	}
}

// WithLogger sets the base logger
func WithLogger(log *logrus.Logger) Option {
	return func(o *Optimizer) {
		o.logger = log
	}
}

// WithStrategyName labels metrics and logs with the strategy being tuned
func WithStrategyName(name string) Option {
	return func(o *Optimizer) {
		o.strategyName = name
	}
}

// New creates an optimizer over one price series
func New(factory strategy.Factory, prices timeseries.Series, cfg backtest.Config, opts ...Option) (*Optimizer, error) {
	if factory == nil {
		return nil, fmt.Errorf("strategy factory is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}

	o := &Optimizer{
		factory:          factory,
		prices:           prices,
		config:           cfg,
		strategyName:     "custom",
		workers:          1,
		progressInterval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", o.workers)
	}
	if o.timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative")
	}
	if o.logger == nil {
		o.logger = logger.Discard()
	}
	o.log = logger.NewOptimizerLogger(o.logger)
	return o, nil
}

// Search evaluates every grid combination and returns the best one. The
// category is validated before any strategy is built. A combination that
// fails is scored -Inf and counted as skipped; the search continues. Only
// cancellation of ctx aborts the search.
func (o *Optimizer) Search(ctx context.Context, grid Grid, category string) (*Result, error) {
	return o.search(ctx, o.prices, grid, category, "grid")
}

func (o *Optimizer) search(ctx context.Context, prices timeseries.Series, grid Grid, category, method string) (*Result, error) {
	cat, err := ParseCategory(category)
	if err != nil {
		return nil, err
	}
	combos, err := grid.Combinations()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.New()
	o.log.LogSearchStarted(runID.String(), cat.String(), len(combos), o.workers)

	tracker := o.newTracker(runID.String(), len(combos))
	evaluations := make([]Evaluation, len(combos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, params := range combos {
		if gctx.Err() != nil {
			break
		}
		i, params := i, params
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evaluations[i] = o.evaluate(gctx, runID.String(), prices, i, params, cat)
			tracker.done(evaluations[i])
			return nil
		})
	}
	waitErr := g.Wait()
	tracker.finish()
	if err := ctx.Err(); err != nil {
		metrics.RecordSearch(method, metrics.StatusFailure, time.Since(start).Seconds())
		return nil, err
	}
	if waitErr != nil {
		metrics.RecordSearch(method, metrics.StatusFailure, time.Since(start).Seconds())
		return nil, waitErr
	}

	result := reduce(runID, cat, evaluations)
	result.Duration = time.Since(start)

	metrics.RecordSearch(method, metrics.StatusSuccess, result.Duration.Seconds())
	if result.Found() {
		metrics.UpdateBestScore(o.strategyName, cat.String(), result.BestScore)
	}
	o.log.LogSearchCompleted(runID.String(), cat.String(), result.BestParams, result.BestScore,
		len(result.Evaluations), result.Skipped, float64(result.Duration.Microseconds())/1000)
	return result, nil
}

// reduce picks the winner in enumeration order: a combination replaces the
// running best only when strictly greater, so ties keep the earliest and NaN
// never wins.
func reduce(runID uuid.UUID, cat Category, evaluations []Evaluation) *Result {
	result := &Result{
		RunID:       runID,
		Category:    cat,
		BestScore:   math.Inf(-1),
		BestIndex:   -1,
		Evaluations: evaluations,
	}
	for i, ev := range evaluations {
		if ev.Err != nil {
			result.Skipped++
			continue
		}
		if ev.Score > result.BestScore {
			result.BestScore = ev.Score
			result.BestParams = ev.Params
			result.BestIndex = i
		}
	}
	return result
}

func (o *Optimizer) evaluate(ctx context.Context, runID string, prices timeseries.Series, index int, params strategy.Params, cat Category) Evaluation {
	start := time.Now()
	ev := Evaluation{Index: index, Params: params, Score: math.Inf(-1)}

	summary, err := o.runCombination(ctx, prices, params)
	ev.Duration = time.Since(start)
	if err != nil {
		ev.Err = &EvaluationError{Index: index, Params: params, Err: err}
		status := metrics.StatusFailure
		if errors.Is(err, context.DeadlineExceeded) {
			status = metrics.StatusTimeout
		}
		metrics.RecordCombination(cat.String(), status)
		o.log.LogCombinationSkipped(runID, index, params, err)
		return ev
	}

	ev.Score = cat.Score(summary)
	ev.Sharpe = summary.Sharpe
	ev.FinalPnL = summary.FinalPnL
	ev.MaxDrawdown = summary.MaxDrawdown
	metrics.RecordCombination(cat.String(), metrics.StatusSuccess)
	return ev
}

func (o *Optimizer) runCombination(ctx context.Context, prices timeseries.Series, params strategy.Params) (summary *backtest.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	strat, err := o.factory(prices, params.Clone())
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy: %w", err)
	}
	engine, err := backtest.NewEngine(o.config, prices, strat, backtest.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	if err := engine.Run(ctx); err != nil {
		return nil, err
	}
	return engine.Summary(false)
}

// progressTracker reports search progress on the bar and, throttled, in the log
type progressTracker struct {
	mu        sync.Mutex
	runID     string
	total     int
	completed int
	best      float64
	bar       *progressbar.ProgressBar
	sometimes rate.Sometimes
	log       *logger.OptimizerLogger
}

func (o *Optimizer) newTracker(runID string, total int) *progressTracker {
	t := &progressTracker{
		runID:     runID,
		total:     total,
		best:      math.Inf(-1),
		sometimes: rate.Sometimes{Interval: o.progressInterval},
		log:       o.log,
	}
	if o.progress != nil {
		t.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(o.progress),
			progressbar.OptionSetDescription("Optimizing "+o.strategyName),
			progressbar.OptionShowCount(),
		)
	}
	return t
}

func (t *progressTracker) done(ev Evaluation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	if ev.Err == nil && ev.Score > t.best {
		t.best = ev.Score
		t.log.LogNewBest(t.runID, ev.Index, ev.Params, ev.Score)
	}
	if t.bar != nil {
		_ = t.bar.Add(1)
	}
	t.sometimes.Do(func() {
		t.log.LogProgress(t.runID, t.completed, t.total, t.best)
	})
}

func (t *progressTracker) finish() {
	if t.bar != nil {
		_ = t.bar.Finish()
	}
}
