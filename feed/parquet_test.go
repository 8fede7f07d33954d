package feed

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/backtest"
)

func TestParquetRoundTrip(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	in := []backtest.Bar{
		{Time: base, Price: 100, Signal: 1},
		{Time: base.Add(time.Minute), Price: 101.5, Signal: -0.5},
		{Time: base.Add(2 * time.Minute), Price: 99.25, Signal: 0},
	}

	path := filepath.Join(t.TempDir(), "bars.parquet")
	require.NoError(t, WriteParquet(path, in))

	out, err := LoadParquet(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadParquetMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadParquet(filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}
