package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/vector-bt/internal/optimizer"
)

var (
	wfTrain int
	wfTest  int
	wfStep  int
	wfJSON  bool
)

func init() {
	walkForwardCmd.Flags().IntVar(&wfTrain, "train", 0, "Override training window length in bars")
	walkForwardCmd.Flags().IntVar(&wfTest, "test", 0, "Override test window length in bars")
	walkForwardCmd.Flags().IntVar(&wfStep, "step", 0, "Override the window advance in bars (defaults to the test length)")
	walkForwardCmd.Flags().BoolVar(&wfJSON, "json", false, "Print the full result as JSON")
}

var walkForwardCmd = &cobra.Command{
	Use:   "walk-forward",
	Short: "Optimize on rolling training windows and score the winners out of sample",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		srv := startMonitoring(ctx)
		prices, err := loadPrices(ctx)
		if err != nil {
			return err
		}
		markReady(srv, prices)

		wfCfg := optimizer.WalkForwardConfigFrom(cfg.Optimizer.WalkForward)
		if wfTrain > 0 {
			wfCfg.TrainBars = wfTrain
		}
		if wfTest > 0 {
			wfCfg.TestBars = wfTest
		}
		if wfStep > 0 {
			wfCfg.StepBars = wfStep
		}

		opt, err := newOptimizer(prices)
		if err != nil {
			return err
		}
		result, err := opt.WalkForward(ctx, optimizer.GridFromConfig(cfg.Optimizer.Grid), category(), wfCfg)
		if err != nil {
			return fmt.Errorf("walk-forward failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if wfJSON {
			fmt.Fprintln(out, result.ToJSON())
			return nil
		}
		fmt.Fprintf(out, "Walk-forward run %s (category: %s)\n", result.RunID, result.Category)
		for _, w := range result.Windows {
			if w.Err != nil {
				fmt.Fprintf(out, "  window %2d  %s .. %s  skipped: %v\n",
					w.WindowID, w.TestStart.Format("2006-01-02"), w.TestEnd.Format("2006-01-02"), w.Err)
				continue
			}
			fmt.Fprintf(out, "  window %2d  %s .. %s  %-24s train %.4f  test %.4f  test P&L %.2f\n",
				w.WindowID, w.TestStart.Format("2006-01-02"), w.TestEnd.Format("2006-01-02"),
				optimizer.FormatParams(w.BestParams), w.TrainScore, w.TestScore, w.TestPnL)
		}
		fmt.Fprintf(out, "  Total test P&L : %.2f\n", result.TotalTestPnL)
		fmt.Fprintf(out, "  Consistency    : %.2f\n", result.ConsistencyScore)
		fmt.Fprintf(out, "  Overfit score  : %.2f\n", result.OverfitScore)
		return nil
	},
}
