package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/backtester/backtest"
)

// Config represents the complete run configuration
type Config struct {
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Input    InputConfig    `json:"input" yaml:"input"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// BacktestConfig contains the engine parameters
type BacktestConfig struct {
	InitialCapital     float64 `json:"initial_capital" yaml:"initial_capital"`
	TransactionCostPct float64 `json:"transaction_cost_pct" yaml:"transaction_cost_pct"`
	CloseEnd           bool    `json:"close_end" yaml:"close_end"`
}

// InputConfig locates the bar series
type InputConfig struct {
	Path   string `json:"path" yaml:"path"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // "csv", "parquet", or "" to infer from extension
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on
// content), layered over Default() so absent keys keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("%w: backtest.initial_capital must be positive", backtest.ErrConfiguration)
	}
	if c.Backtest.TransactionCostPct < 0 {
		return fmt.Errorf("%w: backtest.transaction_cost_pct must not be negative", backtest.ErrConfiguration)
	}
	switch c.Input.Format {
	case "", "csv", "parquet":
	default:
		return fmt.Errorf("%w: input.format must be 'csv' or 'parquet'", backtest.ErrConfiguration)
	}
	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("%w: journal trades_file and equity_file required for CSV type", backtest.ErrConfiguration)
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("%w: journal db_path required for SQLite type", backtest.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: journal.type must be 'csv', 'sqlite' or 'none'", backtest.ErrConfiguration)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCapital:     10_000,
			TransactionCostPct: backtest.DefaultCostRate,
			CloseEnd:           true,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
