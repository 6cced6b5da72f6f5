package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/vector-bt/internal/backtest"
	"github.com/yourusername/vector-bt/internal/optimizer"
	"github.com/yourusername/vector-bt/internal/strategy"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

var (
	optCategory string
	optWorkers  int
	optTopN     int
)

func init() {
	optimizeCmd.Flags().StringVar(&optCategory, "category", "", "Override the scoring category (sharpe, pnl)")
	optimizeCmd.Flags().IntVarP(&optWorkers, "workers", "w", 0, "Override the number of parallel evaluations")
	optimizeCmd.Flags().IntVar(&optTopN, "top", 0, "Override how many ranked combinations to print")

	walkForwardCmd.Flags().StringVar(&optCategory, "category", "", "Override the scoring category (sharpe, pnl)")
	walkForwardCmd.Flags().IntVarP(&optWorkers, "workers", "w", 0, "Override the number of parallel evaluations")
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search strategy parameters and report the best combination",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		srv := startMonitoring(ctx)
		prices, err := loadPrices(ctx)
		if err != nil {
			return err
		}
		markReady(srv, prices)

		opt, err := newOptimizer(prices)
		if err != nil {
			return err
		}
		result, err := opt.Search(ctx, optimizer.GridFromConfig(cfg.Optimizer.Grid), category())
		if err != nil {
			return fmt.Errorf("optimization failed: %w", err)
		}

		topN := cfg.Optimizer.TopN
		if optTopN > 0 {
			topN = optTopN
		}
		fmt.Fprint(cmd.OutOrStdout(), optimizer.FormatResult(result, topN))
		if !result.Found() {
			return fmt.Errorf("no parameter combination produced a score (%d skipped)", result.Skipped)
		}
		return nil
	},
}

func category() string {
	if optCategory != "" {
		return optCategory
	}
	return cfg.Optimizer.Category
}

// newOptimizer builds an optimizer for the configured strategy
func newOptimizer(prices timeseries.Series) (*optimizer.Optimizer, error) {
	factory, err := strategy.Lookup(cfg.Strategy.Name)
	if err != nil {
		return nil, err
	}
	engineCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return nil, err
	}

	workers := cfg.Optimizer.Workers
	if optWorkers > 0 {
		workers = optWorkers
	}
	opts := []optimizer.Option{
		optimizer.WithWorkers(workers),
		optimizer.WithTimeout(cfg.Optimizer.Timeout()),
		optimizer.WithLogger(log),
		optimizer.WithStrategyName(cfg.Strategy.Name),
	}
	if cfg.Optimizer.Progress {
		opts = append(opts, optimizer.WithProgress(os.Stderr))
	}
	return optimizer.New(withBaseParams(factory), prices, engineCfg, opts...)
}

// withBaseParams applies the configured strategy params beneath each grid
// combination so parameters outside the grid keep their configured values.
func withBaseParams(factory strategy.Factory) strategy.Factory {
	base := cfg.Strategy.Params
	if len(base) == 0 {
		return factory
	}
	return func(prices timeseries.Series, params strategy.Params) (strategy.Strategy, error) {
		merged := make(strategy.Params, len(base)+len(params))
		for k, v := range base {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		return factory(prices, merged)
	}
}
