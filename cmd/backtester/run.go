package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/feed"
	"github.com/rustyeddy/backtester/internal/id"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/report"
	"github.com/rustyeddy/backtester/stats"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over a bar file and print the summary",
	Long: `Run loads bars (CSV with datetime,close,signal columns, optionally
xz-compressed, or Parquet), simulates the signal series and prints the
summary report. Trades and the equity curve can be journaled to CSV
files or a SQLite database.

Example:
  backtester run --bars data/btc_1m.csv --capital 10000 --cost 0.0003`,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runBarsPath   string
	runFormat     string
	runCapital    float64
	runCostPct    float64
	runCloseEnd   bool
	runJournal    string
	runDBPath     string
	runTradesCSV  string
	runEquityCSV  string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config file")
	runCmd.Flags().StringVarP(&runBarsPath, "bars", "b", "", "path to bar file (.csv, .csv.xz or .parquet)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "bar file format (csv, parquet); inferred from extension when empty")
	runCmd.Flags().Float64Var(&runCapital, "capital", 10_000, "initial capital")
	runCmd.Flags().Float64Var(&runCostPct, "cost", backtest.DefaultCostRate, "transaction cost per side (0.0003 = 0.03%)")
	runCmd.Flags().BoolVar(&runCloseEnd, "close-end", true, "force-close any open position at the last bar")
	runCmd.Flags().StringVarP(&runJournal, "journal", "j", "", "journal type (csv, sqlite, none)")
	runCmd.Flags().StringVarP(&runDBPath, "db", "d", "./backtest.sqlite", "path to SQLite journal DB")
	runCmd.Flags().StringVar(&runTradesCSV, "trades-csv", "./trades.csv", "path to trades CSV (csv journal)")
	runCmd.Flags().StringVar(&runEquityCSV, "equity-csv", "./equity.csv", "path to equity CSV (csv journal)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Input.Path == "" {
		return fmt.Errorf("bar file required (--bars or input.path in config)")
	}

	bars, err := loadBars(cfg.Input)
	if err != nil {
		return err
	}

	engine, err := backtest.NewEngine(backtest.Config{
		InitialCapital: cfg.Backtest.InitialCapital,
		CostRate:       cfg.Backtest.TransactionCostPct,
	})
	if err != nil {
		return err
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
	}

	runner := backtest.Runner{
		Engine: engine,
		Feed:   backtest.NewSliceFeed(bars),
		Options: backtest.RunnerOptions{
			CloseEnd: cfg.Backtest.CloseEnd,
			RunID:    id.New(),
		},
	}

	res, err := runner.Run(j)
	if err != nil {
		return err
	}

	summary, err := stats.Compute(res)
	if err != nil {
		return err
	}

	if sj, ok := j.(*journal.SQLiteJournal); ok {
		err := sj.RecordRun(journal.RunRecord{
			RunID:          res.RunID,
			Created:        time.Now().UTC(),
			Dataset:        cfg.Input.Path,
			InitialCapital: summary.InitialCapital,
			CostRate:       cfg.Backtest.TransactionCostPct,
			Start:          res.Start,
			End:            res.End,
			FinalCapital:   summary.FinalCapital,
			TotalPnL:       summary.TotalPnL,
			TotalCost:      summary.TotalTransactionCost,
			Trades:         summary.TotalTrades,
			Wins:           summary.WinningTrades,
			Losses:         summary.LosingTrades,
			ReturnPct:      summary.FinalReturnPct,
			CAGRPct:        summary.CAGRPct,
			SharpeRatio:    summary.SharpeRatio,
			MaxDrawdownPct: summary.MaxDrawdownPct,
		})
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}

	return report.Write(os.Stdout, summary)
}

// buildConfig layers CLI flags over the config file over defaults.
// A flag only overrides when it was set on the command line.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("bars") {
		cfg.Input.Path = runBarsPath
	}
	if flags.Changed("format") {
		cfg.Input.Format = runFormat
	}
	if flags.Changed("capital") {
		cfg.Backtest.InitialCapital = runCapital
	}
	if flags.Changed("cost") {
		cfg.Backtest.TransactionCostPct = runCostPct
	}
	if flags.Changed("close-end") {
		cfg.Backtest.CloseEnd = runCloseEnd
	}
	if flags.Changed("journal") {
		cfg.Journal.Type = runJournal
		switch runJournal {
		case "csv":
			cfg.Journal.TradesFile = runTradesCSV
			cfg.Journal.EquityFile = runEquityCSV
		case "sqlite":
			cfg.Journal.DBPath = runDBPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadBars(in config.InputConfig) ([]backtest.Bar, error) {
	format := in.Format
	if format == "" {
		if strings.HasSuffix(in.Path, ".parquet") {
			format = "parquet"
		} else {
			format = "csv"
		}
	}

	switch format {
	case "parquet":
		return feed.LoadParquet(in.Path)
	default:
		return feed.LoadCSV(in.Path)
	}
}
