// Package feed loads bar series from files. Loaders validate and sort;
// the engine consumes whatever ordered bars they produce.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/backtester/backtest"
)

// Accepted datetime layouts, tried in order. The first matches the
// DD-MM-YYYY HH:MM exports this tool grew up with.
var csvTimeLayouts = []string{
	"02-01-2006 15:04",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// LoadCSV reads bars from a CSV file with a datetime/close/signal
// header. Files ending in .xz are decompressed on the fly.
func LoadCSV(path string) ([]backtest.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("feed: open xz %s: %w", path, err)
		}
		r = xr
	}

	bars, err := ReadCSV(r)
	if err != nil {
		return nil, fmt.Errorf("feed: %s: %w", path, err)
	}
	return bars, nil
}

// ReadCSV parses bar rows from r. Required columns: datetime, close.
// A missing signal column (or empty signal cell) means flat. Rows are
// sorted by timestamp after parsing.
func ReadCSV(r io.Reader) ([]backtest.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", backtest.ErrSchema)
	}

	timeCol, priceCol, signalCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "datetime", "time", "timestamp":
			timeCol = i
		case "close", "price":
			priceCol = i
		case "signal":
			signalCol = i
		}
	}
	if timeCol < 0 {
		return nil, fmt.Errorf("%w: no datetime column", backtest.ErrSchema)
	}
	if priceCol < 0 {
		return nil, fmt.Errorf("%w: no close column", backtest.ErrSchema)
	}

	var bars []backtest.Bar
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", backtest.ErrParse, line+1, err)
		}
		line++

		ts, err := parseTime(row[timeCol])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: datetime %q", backtest.ErrParse, line, row[timeCol])
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(row[priceCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: close %q", backtest.ErrParse, line, row[priceCol])
		}

		signal := 0.0
		if signalCol >= 0 && signalCol < len(row) {
			cell := strings.TrimSpace(row[signalCol])
			if cell != "" {
				signal, err = strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: row %d: signal %q", backtest.ErrParse, line, row[signalCol])
				}
			}
		}

		b := backtest.Bar{Time: ts, Price: price, Signal: signal}
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		bars = append(bars, b)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}
