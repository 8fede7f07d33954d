package feed

import (
	"fmt"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/rustyeddy/backtester/backtest"
)

// barRow is the parquet row shape. Timestamps are Unix milliseconds UTC.
type barRow struct {
	Timestamp int64   `parquet:"t"`
	Close     float64 `parquet:"close"`
	Signal    float64 `parquet:"signal,optional"`
}

// LoadParquet reads bars from a parquet file written by WriteParquet
// (or any file with t/close/signal columns). Rows are sorted by
// timestamp after reading.
func LoadParquet(path string) ([]backtest.Bar, error) {
	rows, err := parquet.ReadFile[barRow](path)
	if err != nil {
		return nil, fmt.Errorf("feed: read parquet %s: %w", path, err)
	}

	bars := make([]backtest.Bar, 0, len(rows))
	for i, r := range rows {
		b := backtest.Bar{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Price:  r.Close,
			Signal: r.Signal,
		}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("feed: %s row %d: %w", path, i, err)
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// WriteParquet stores a bar series as parquet for downstream tooling.
func WriteParquet(path string, bars []backtest.Bar) error {
	rows := make([]barRow, len(bars))
	for i, b := range bars {
		rows[i] = barRow{
			Timestamp: b.Time.UnixMilli(),
			Close:     b.Price,
			Signal:    b.Signal,
		}
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("feed: write parquet %s: %w", path, err)
	}
	return nil
}
