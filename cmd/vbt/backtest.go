package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/vector-bt/internal/backtest"
	"github.com/yourusername/vector-bt/internal/strategy"
)

var (
	btParams     []string
	btJSON       bool
	btMonteCarlo int
	btSeed       int64
)

func init() {
	backtestCmd.Flags().StringArrayVarP(&btParams, "param", "p", nil, "Strategy parameter override as key=value (repeatable)")
	backtestCmd.Flags().BoolVar(&btJSON, "json", false, "Print summary statistics as JSON")
	backtestCmd.Flags().IntVar(&btMonteCarlo, "monte-carlo", 0, "Number of bootstrap paths over the strategy P&L (0 disables)")
	backtestCmd.Flags().Int64Var(&btSeed, "seed", 0, "Monte Carlo seed (0 seeds from the clock)")
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the configured strategy once and report its statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		srv := startMonitoring(ctx)
		prices, err := loadPrices(ctx)
		if err != nil {
			return err
		}
		markReady(srv, prices)

		params := strategy.Params{}
		for k, v := range cfg.Strategy.Params {
			params[k] = v
		}
		overrides, err := parseParams(btParams)
		if err != nil {
			return err
		}
		for k, v := range overrides {
			params[k] = v
		}

		factory, err := strategy.Lookup(cfg.Strategy.Name)
		if err != nil {
			return err
		}
		strat, err := factory(prices, params)
		if err != nil {
			return fmt.Errorf("failed to build strategy %s: %w", cfg.Strategy.Name, err)
		}

		engineCfg, err := backtest.FromConfig(&cfg.Backtest)
		if err != nil {
			return err
		}
		engine, err := backtest.NewEngine(engineCfg, prices, strat, engineOptions()...)
		if err != nil {
			return err
		}
		if err := engine.Run(ctx); err != nil {
			return fmt.Errorf("backtest failed: %w", err)
		}

		summary, err := engine.Summary(cfg.Report.Show && !btJSON)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if btJSON {
			fmt.Fprintln(out, summary.ToJSON())
		} else if !cfg.Report.Show {
			fmt.Fprint(out, backtest.FormatReport(summary))
		}
		if !summary.SharpeDefined() {
			log.WithField("strategy", strat.Name()).Warn("Sharpe ratio undefined: strategy returns have no dispersion")
		}

		if btMonteCarlo > 0 {
			pnl, err := engine.StrategyPnL()
			if err != nil {
				return err
			}
			mc, err := backtest.RunMonteCarlo(ctx, pnl, backtest.MonteCarloConfig{
				Iterations: btMonteCarlo,
				Seed:       btSeed,
			})
			if err != nil {
				return fmt.Errorf("monte carlo failed: %w", err)
			}
			log.WithFields(logrus.Fields{
				"iterations":     mc.Iterations,
				"prob_of_profit": mc.ProbabilityOfProfit,
				"var_95":         mc.VaR95,
			}).Info("Monte Carlo simulation completed")
			fmt.Fprintln(out, mc.ToJSON())
		}
		return nil
	},
}

// engineOptions wires logging and the configured report outputs
func engineOptions() []backtest.Option {
	opts := []backtest.Option{
		backtest.WithLogger(log),
		backtest.WithReportWriter(os.Stdout),
	}
	var renderers multiRenderer
	if cfg.Report.CSVPath != "" {
		renderers = append(renderers, backtest.CSVRenderer{Path: cfg.Report.CSVPath})
	}
	if cfg.Report.HTMLPath != "" {
		renderers = append(renderers, backtest.HTMLRenderer{Path: cfg.Report.HTMLPath, Title: cfg.Strategy.Name})
	}
	if len(renderers) > 0 {
		opts = append(opts, backtest.WithRenderer(renderers))
	}
	return opts
}

// multiRenderer renders to each output and returns the first failure
type multiRenderer []backtest.Renderer

func (m multiRenderer) Render(series backtest.ReportSeries) error {
	var first error
	for _, r := range m {
		if err := r.Render(series); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// parseParams turns key=value flags into strategy params. Values are read as
// int, float or bool where possible and kept as strings otherwise.
func parseParams(pairs []string) (strategy.Params, error) {
	params := strategy.Params{}
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected key=value", pair)
		}
		params[key] = parseValue(strings.TrimSpace(raw))
	}
	return params, nil
}

func parseValue(raw string) any {
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
