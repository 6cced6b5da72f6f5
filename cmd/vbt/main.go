// Package main provides the vbt command line tool: vectorized backtests,
// grid-search optimization and walk-forward analysis over a price series.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/vector-bt/internal/config"
	"github.com/yourusername/vector-bt/internal/datasource"
	"github.com/yourusername/vector-bt/internal/health"
	"github.com/yourusername/vector-bt/internal/logger"
	"github.com/yourusername/vector-bt/internal/metrics"
	"github.com/yourusername/vector-bt/internal/timeseries"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logLevel   string
	dataPath   string
	log        *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Override the configured price CSV path")

	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(walkForwardCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "vbt",
	Short: "Vectorized backtesting and parameter search",
	Long:  `Applies strategy position signals to a price series, reports return, Sharpe and drawdown statistics, and grid-searches strategy parameters.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vbt %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.App.LogLevel = logLevel
	}
	if dataPath != "" {
		loaded.Data.Path = dataPath
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadPrices reads the configured series and records its size
func loadPrices(ctx context.Context) (timeseries.Series, error) {
	src, err := datasource.NewSource(cfg.Data)
	if err != nil {
		return nil, err
	}
	prices, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateSeriesLength(len(prices))
	log.WithFields(logrus.Fields{
		"source": src.Name(),
		"bars":   len(prices),
	}).Info("Loaded price series")
	return prices, nil
}

// startMonitoring serves /health, /ready and metrics when enabled. The
// returned server is marked ready once prices are loaded.
func startMonitoring(ctx context.Context) *health.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}
	metrics.InitRegistry()
	srv := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Metrics.Port,
		MetricsPath: cfg.Metrics.Path,
		Logger:      log,
	})
	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Warn("Failed to start monitoring server")
		return nil
	}
	return srv
}

func markReady(srv *health.Server, prices timeseries.Series) {
	if srv == nil {
		return
	}
	srv.AddCheck("prices", func(context.Context) error {
		if len(prices) < 2 {
			return fmt.Errorf("only %d bars loaded", len(prices))
		}
		return nil
	})
	srv.SetReady(true)
}
