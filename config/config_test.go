package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/backtest"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, backtest.DefaultCostRate, cfg.Backtest.TransactionCostPct)
	assert.True(t, cfg.Backtest.CloseEnd)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Backtest.InitialCapital = 0 }},
		{"negative cost", func(c *Config) { c.Backtest.TransactionCostPct = -0.1 }},
		{"bad format", func(c *Config) { c.Input.Format = "xml" }},
		{"bad journal type", func(c *Config) { c.Journal.Type = "kafka" }},
		{"csv journal without files", func(c *Config) { c.Journal.Type = "csv" }},
		{"sqlite journal without db", func(c *Config) { c.Journal.Type = "sqlite" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), backtest.ErrConfiguration)
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `backtest:
  initial_capital: 25000
input:
  path: ./bars.csv
journal:
  type: sqlite
  db_path: ./run.sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 25_000.0, cfg.Backtest.InitialCapital)
	// Absent keys keep their defaults.
	assert.Equal(t, backtest.DefaultCostRate, cfg.Backtest.TransactionCostPct)
	assert.True(t, cfg.Backtest.CloseEnd)
	assert.Equal(t, "./bars.csv", cfg.Input.Path)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
}

func TestLoadFromFileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "backtest:\n  initial_capital: -1\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadFromFile(path)
	assert.ErrorIs(t, err, backtest.ErrConfiguration)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Backtest.InitialCapital = 42_000
	cfg.Input.Path = "./bars.parquet"
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
