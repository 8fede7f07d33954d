package backtest

import (
	"fmt"
	"time"
)

// Bar is one observation of the input series: the close price and the
// fractional position signal in effect at that instant.
//
// Signal is in [-1, 1]: sign is direction, magnitude is the fraction
// of capital to deploy. A missing signal is represented as 0.
type Bar struct {
	Time   time.Time
	Price  float64
	Signal float64
}

// Validate checks the per-bar field invariants.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return fmt.Errorf("%w: bar has no timestamp", ErrSchema)
	}
	if b.Price <= 0 {
		return fmt.Errorf("%w: price %v is not positive at %s", ErrSchema, b.Price, b.Time.Format(time.RFC3339))
	}
	if b.Signal < -1 || b.Signal > 1 {
		return fmt.Errorf("%w: signal %v outside [-1,1] at %s", ErrSchema, b.Signal, b.Time.Format(time.RFC3339))
	}
	return nil
}

// BarFeed yields bars one at a time in timestamp order.
// Implementations should be deterministic and return (ok=false, err=nil) at EOF.
type BarFeed interface {
	Next() (b Bar, ok bool, err error)
	Close() error
}

// SliceFeed adapts an in-memory bar slice to BarFeed.
type SliceFeed struct {
	bars []Bar
	pos  int
}

func NewSliceFeed(bars []Bar) *SliceFeed { return &SliceFeed{bars: bars} }

func (f *SliceFeed) Next() (Bar, bool, error) {
	if f.pos >= len(f.bars) {
		return Bar{}, false, nil
	}
	b := f.bars[f.pos]
	f.pos++
	return b, true, nil
}

func (f *SliceFeed) Close() error { return nil }
