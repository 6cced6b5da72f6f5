// Package config provides configuration management for the vector-bt tools.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Data      DataConfig      `mapstructure:"data" validate:"required"`
	Strategy  StrategyConfig  `mapstructure:"strategy" validate:"required"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" validate:"required"`
	Report    ReportConfig    `mapstructure:"report"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// BacktestConfig represents engine configuration
type BacktestConfig struct {
	AnnualizationDays float64 `mapstructure:"annualization_days" validate:"required,gt=0"`
	BarsPerDay        float64 `mapstructure:"bars_per_day" validate:"required,gt=0"`
	ReturnOffset      float64 `mapstructure:"return_offset"`
}

// DataConfig points at the price series to backtest
type DataConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	TimeFormat string `mapstructure:"time_format"`
}

// StrategyConfig selects a registered strategy and its fixed parameters
type StrategyConfig struct {
	Name   string         `mapstructure:"name" validate:"required"`
	Params map[string]any `mapstructure:"params"`
}

// OptimizerConfig represents grid search configuration
type OptimizerConfig struct {
	Category       string            `mapstructure:"category" validate:"required,category"`
	Workers        int               `mapstructure:"workers" validate:"required,gte=1"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds" validate:"gte=0"`
	TopN           int               `mapstructure:"top_n" validate:"gte=0"`
	Progress       bool              `mapstructure:"progress"`
	Grid           []GridParamConfig `mapstructure:"grid" validate:"dive"`
	WalkForward    WalkForwardConfig `mapstructure:"walk_forward"`
}

// GridParamConfig is one named list of candidate values. Grid order defines
// enumeration order.
type GridParamConfig struct {
	Name   string `mapstructure:"name" validate:"required"`
	Values []any  `mapstructure:"values" validate:"min=1"`
}

// WalkForwardConfig sizes walk-forward windows in bars
type WalkForwardConfig struct {
	TrainBars int `mapstructure:"train_bars" validate:"gte=0"`
	TestBars  int `mapstructure:"test_bars" validate:"gte=0"`
	StepBars  int `mapstructure:"step_bars" validate:"gte=0"`
}

// ReportConfig controls the report sinks
type ReportConfig struct {
	Show     bool   `mapstructure:"show"`
	CSVPath  string `mapstructure:"csv_path"`
	HTMLPath string `mapstructure:"html_path"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Timeout returns the per-combination timeout, zero when disabled
func (o OptimizerConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}
