package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

// minuteBars pairs prices with signals on consecutive minute bars.
func minuteBars(prices, signals []float64) []Bar {
	bars := make([]Bar, len(prices))
	for i := range prices {
		bars[i] = Bar{
			Time:   t0.Add(time.Duration(i) * time.Minute),
			Price:  prices[i],
			Signal: signals[i],
		}
	}
	return bars
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{InitialCapital: 10_000, CostRate: DefaultCostRate})
	require.NoError(t, err)
	return e
}

func run(e *Engine, bars []Bar) {
	for _, b := range bars {
		e.Step(b)
	}
}

func TestNewEngineConfig(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Config{InitialCapital: 0, CostRate: 0.0003})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewEngine(Config{InitialCapital: -5, CostRate: 0.0003})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewEngine(Config{InitialCapital: 100, CostRate: -0.1})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewEngine(Config{InitialCapital: 100, CostRate: 0})
	assert.NoError(t, err)
}

func TestFlatSignalsNoTrades(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	run(e, minuteBars(
		[]float64{100, 101, 99, 105},
		[]float64{0, 0, 0, 0},
	))

	assert.Empty(t, e.Trades())
	require.Len(t, e.Equity(), 4)
	for _, p := range e.Equity() {
		assert.Equal(t, 10_000.0, p.Equity)
		assert.Zero(t, p.Drawdown)
		assert.Zero(t, p.Position)
	}
	assert.Equal(t, 10_000.0, e.Capital())
}

func TestTransitionCount(t *testing.T) {
	t.Parallel()

	// long, hold, flat, short at constant price: the long round trip
	// plus the short opened on the last bar.
	e := newTestEngine(t)
	bars := minuteBars(
		[]float64{100, 100, 100, 100},
		[]float64{1, 1, 0, -1},
	)
	run(e, bars)

	require.Len(t, e.Trades(), 1)
	assert.True(t, e.InPosition())

	long := e.Trades()[0]
	assert.Equal(t, Long, long.Side)
	assert.Equal(t, bars[0].Time, long.EntryTime)
	assert.Equal(t, bars[2].Time, long.ExitTime)
	assert.Equal(t, 2*time.Minute, long.HoldPeriod)
	// Price unchanged: net PnL is exactly the round-trip cost.
	assert.InDelta(t, 0.0, long.GrossPnL, 1e-12)
	assert.InDelta(t, -long.TransactionCost, long.NetPnL, 1e-12)
	assert.InDelta(t, 6.0, long.TransactionCost, 1e-12)

	e.CloseAll(bars[3].Time, bars[3].Price)
	require.Len(t, e.Trades(), 2)
	assert.Equal(t, Short, e.Trades()[1].Side)
	assert.False(t, e.InPosition())
}

func TestReversalChargesTwoCosts(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	bars := minuteBars(
		[]float64{100, 100},
		[]float64{1, -1},
	)
	run(e, bars)

	// Bar 2 closes the long (exit cost) and opens the short (entry
	// cost) in the same bar.
	require.Len(t, e.Trades(), 1)
	assert.True(t, e.InPosition())

	entry1 := 10_000 * DefaultCostRate       // 3
	exit1 := 10_000 * DefaultCostRate        // 3, price unchanged
	capAfterClose := 10_000 - entry1 - exit1 // 9994
	entry2 := capAfterClose * DefaultCostRate

	assert.InDelta(t, capAfterClose-entry2, e.Capital(), 1e-9)
}

func TestPartialSizing(t *testing.T) {
	t.Parallel()

	half := newTestEngine(t)
	run(half, minuteBars([]float64{100, 100}, []float64{0.5, 0}))

	full := newTestEngine(t)
	run(full, minuteBars([]float64{100, 100}, []float64{1, 0}))

	require.Len(t, half.Trades(), 1)
	require.Len(t, full.Trades(), 1)

	assert.Equal(t, 0.5, half.Trades()[0].Fraction)
	assert.InDelta(t, 3.0, half.Trades()[0].TransactionCost, 1e-12)
	assert.InDelta(t, 2*half.Trades()[0].TransactionCost, full.Trades()[0].TransactionCost, 1e-12)
}

func TestMagnitudeChangeClosesAndReopens(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	run(e, minuteBars([]float64{100, 100}, []float64{1, 0.5}))

	require.Len(t, e.Trades(), 1)
	assert.Equal(t, 1.0, e.Trades()[0].Fraction)
	assert.True(t, e.InPosition())

	last := e.Equity()[len(e.Equity())-1]
	assert.Equal(t, 0.5, last.Position)
}

func TestShortProfitsOnDecline(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	run(e, minuteBars([]float64{100, 90, 90}, []float64{-1, -1, 0}))

	require.Len(t, e.Trades(), 1)
	tr := e.Trades()[0]
	assert.Equal(t, Short, tr.Side)
	// 10% decline on a 10k notional.
	assert.InDelta(t, 1_000, tr.GrossPnL, 1e-9)
	assert.Positive(t, tr.NetPnL)
}

func TestEquityMarksOpenPosition(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	run(e, minuteBars([]float64{100, 101}, []float64{1, 1}))

	curve := e.Equity()
	require.Len(t, curve, 2)

	entryCost := 10_000 * DefaultCostRate
	// Entry bar: equity dips by the entry cost, no price move yet.
	assert.InDelta(t, 10_000-entryCost, curve[0].Equity, 1e-9)
	// +1% on the 10k notional.
	assert.InDelta(t, 10_000-entryCost+100, curve[1].Equity, 1e-9)
	assert.Equal(t, 1.0, curve[1].Position)
}

func TestConservation(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	bars := minuteBars(
		[]float64{100, 102, 101, 99, 104, 103, 100, 97, 101, 101},
		[]float64{1, 1, 0.5, -0.3, -0.3, 1, 0, -1, -1, 0.7},
	)
	run(e, bars)
	e.CloseAll(bars[len(bars)-1].Time, bars[len(bars)-1].Price)

	var net float64
	for _, tr := range e.Trades() {
		net += tr.NetPnL
		assert.InDelta(t, tr.GrossPnL-tr.TransactionCost, tr.NetPnL, 1e-9)
		assert.False(t, tr.ExitTime.Before(tr.EntryTime))
	}
	assert.InDelta(t, 10_000+net, e.Capital(), 1e-6)

	// Ledger ordered by exit time.
	for i := 1; i < len(e.Trades()); i++ {
		assert.False(t, e.Trades()[i].ExitTime.Before(e.Trades()[i-1].ExitTime))
	}
}

func TestDrawdownAgainstMonotonePeak(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	run(e, minuteBars(
		[]float64{100, 110, 105, 120, 90, 95},
		[]float64{1, 1, 1, 1, 1, 1},
	))

	curve := e.Equity()
	require.Len(t, curve, 6)

	peak := 0.0
	for _, p := range curve {
		assert.LessOrEqual(t, p.Drawdown, 0.0)
		if p.Equity > peak {
			peak = p.Equity
		}
		assert.InDelta(t, (p.Equity-peak)/peak, p.Drawdown, 1e-12)
	}
	// The trough sits below the bar-120 peak.
	assert.Negative(t, curve[4].Drawdown)
}

func TestCloseAllWhenFlatIsNoop(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	run(e, minuteBars([]float64{100}, []float64{0}))

	e.CloseAll(t0, 100)
	assert.Empty(t, e.Trades())
	assert.Equal(t, 10_000.0, e.Capital())
}

func TestDeterminism(t *testing.T) {
	t.Parallel()

	bars := minuteBars(
		[]float64{100, 105, 103, 99, 101},
		[]float64{0.4, -0.4, 1, 0, -1},
	)

	a := newTestEngine(t)
	run(a, bars)
	b := newTestEngine(t)
	run(b, bars)

	assert.Equal(t, a.Trades(), b.Trades())
	assert.Equal(t, a.Equity(), b.Equity())
	assert.Equal(t, a.Capital(), b.Capital())
}
