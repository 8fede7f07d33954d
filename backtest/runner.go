package backtest

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/internal/id"
	"github.com/rustyeddy/backtester/journal"
)

// RunnerOptions controls how the runner behaves.
type RunnerOptions struct {
	// If true, close any position still open after the last bar at the
	// last available price, realizing final capital.
	CloseEnd bool

	// RunID tags journaled records; generated when empty.
	RunID string
}

// Runner drives an engine forward using a bar feed.
type Runner struct {
	Engine  *Engine
	Feed    BarFeed
	Options RunnerOptions
}

// Result is the output bundle of one run.
type Result struct {
	RunID          string
	InitialCapital float64
	FinalCapital   float64
	Trades         TradeLedger
	Equity         EquityCurve
	Start          time.Time
	End            time.Time
}

// Run executes the backtest loop: read the next bar, validate it, step
// the engine. Bars must arrive with strictly increasing timestamps; the
// engine never sees a bar before the feed has yielded it, so no
// decision can use future information.
//
// If j is not nil, every closed trade and equity point is recorded
// after the pass completes.
func (r *Runner) Run(j journal.Journal) (Result, error) {
	if r.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if r.Feed == nil {
		return Result{}, fmt.Errorf("backtest: Feed is required")
	}
	defer r.Feed.Close()

	var start, end time.Time
	bars := 0

	for {
		b, ok, err := r.Feed.Next()
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}

		if err := b.Validate(); err != nil {
			return Result{}, err
		}
		if bars > 0 && !b.Time.After(end) {
			return Result{}, fmt.Errorf("%w: bar at %s does not advance past %s",
				ErrSchema, b.Time.Format(time.RFC3339), end.Format(time.RFC3339))
		}

		if bars == 0 {
			start = b.Time
		}
		end = b.Time

		r.Engine.Step(b)
		bars++
	}

	if bars == 0 {
		return Result{}, fmt.Errorf("%w: feed yielded no bars", ErrInsufficientData)
	}

	if r.Options.CloseEnd {
		last := r.Engine.Equity()[len(r.Engine.Equity())-1]
		r.Engine.CloseAll(last.Time, last.Price)
	}

	runID := r.Options.RunID
	if runID == "" {
		runID = id.New()
	}

	res := Result{
		RunID:          runID,
		InitialCapital: r.Engine.InitialCapital(),
		FinalCapital:   r.Engine.Capital(),
		Trades:         r.Engine.Trades(),
		Equity:         r.Engine.Equity(),
		Start:          start,
		End:            end,
	}

	if j != nil {
		if err := record(j, res); err != nil {
			return Result{}, fmt.Errorf("backtest: journal: %w", err)
		}
	}

	return res, nil
}

func record(j journal.Journal, res Result) error {
	for _, t := range res.Trades {
		rec := journal.TradeRecord{
			TradeID:         id.New(),
			RunID:           res.RunID,
			Side:            t.Side.String(),
			Fraction:        t.Fraction,
			EntryPrice:      t.EntryPrice,
			ExitPrice:       t.ExitPrice,
			EntryTime:       t.EntryTime,
			ExitTime:        t.ExitTime,
			GrossPnL:        t.GrossPnL,
			TransactionCost: t.TransactionCost,
			NetPnL:          t.NetPnL,
		}
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}
	for _, p := range res.Equity {
		rec := journal.EquityRecord{
			RunID:    res.RunID,
			Time:     p.Time,
			Equity:   p.Equity,
			Price:    p.Price,
			Signal:   p.Signal,
			Position: p.Position,
			Drawdown: p.Drawdown,
		}
		if err := j.RecordEquity(rec); err != nil {
			return err
		}
	}
	return nil
}
