package backtest

import (
	"fmt"
	"math"
	"time"
)

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "SHORT"
	}
	return "LONG"
}

// Position is the engine's transient state between an open and the
// matching close. Fraction is the share of capital committed at entry,
// fixed for the life of the position. CapitalAtEntry is the capital
// before the entry cost was deducted; the position notional is
// CapitalAtEntry * Fraction.
type Position struct {
	Open           bool
	Side           Side
	Fraction       float64
	EntryPrice     float64
	EntryTime      time.Time
	CapitalAtEntry float64
	EntryCost      float64
}

// Notional is the position value committed at entry.
func (p Position) Notional() float64 {
	return p.CapitalAtEntry * p.Fraction
}

// Trade is emitted when a position closes. TransactionCost is the
// round trip: entry cost plus exit cost.
type Trade struct {
	EntryTime       time.Time
	ExitTime        time.Time
	EntryPrice      float64
	ExitPrice       float64
	Side            Side
	Fraction        float64
	GrossPnL        float64
	TransactionCost float64
	NetPnL          float64
	HoldPeriod      time.Duration
}

// EquityPoint marks account equity at one bar. Position is the signed
// fraction held after the bar's transition (+ long, - short, 0 flat).
// Drawdown is the fractional decline from the running peak, always <= 0.
type EquityPoint struct {
	Time     time.Time
	Equity   float64
	Price    float64
	Signal   float64
	Position float64
	Drawdown float64
}

// TradeLedger is the ordered history of closed trades, strictly ordered
// by exit time. Append-only; populated exclusively by the engine.
type TradeLedger []Trade

// EquityCurve holds exactly one EquityPoint per input bar, in input
// order. Append-only; populated exclusively by the engine.
type EquityCurve []EquityPoint

// Config holds the engine parameters for one run.
type Config struct {
	InitialCapital float64
	CostRate       float64
}

// Engine turns a stream of fractional position signals into discrete
// trades and a per-bar equity curve, compounding capital across the
// run. One instance owns all mutable state for one run; it only ever
// looks at the bar it is given, never ahead.
type Engine struct {
	cost    CostModel
	initial float64

	capital float64
	pos     Position
	peak    float64

	trades TradeLedger
	curve  EquityCurve
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital must be positive, got %v", ErrConfiguration, cfg.InitialCapital)
	}
	if cfg.CostRate < 0 {
		return nil, fmt.Errorf("%w: cost rate must not be negative, got %v", ErrConfiguration, cfg.CostRate)
	}
	return &Engine{
		cost:    CostModel{Rate: cfg.CostRate},
		initial: cfg.InitialCapital,
		capital: cfg.InitialCapital,
	}, nil
}

// Step advances the simulation by one bar: it applies the bar's signal
// to the current position, then marks equity at the bar's price.
//
// Any change of (direction, fraction), however small, closes the open
// position and reopens at the new target. A reversal therefore pays two
// costs in the same bar, one exit and one entry.
func (e *Engine) Step(b Bar) {
	current := 0.0
	if e.pos.Open {
		current = float64(e.pos.Side) * e.pos.Fraction
	}

	if b.Signal != current {
		if e.pos.Open {
			e.closePosition(b.Time, b.Price)
		}
		if b.Signal != 0 {
			e.openPosition(b.Time, b.Price, b.Signal)
		}
	}

	e.mark(b)
}

// CloseAll force-closes any open position at the given time and price,
// realizing its PnL into capital. No-op when flat. It does not append
// an equity point; the curve keeps one point per input bar.
func (e *Engine) CloseAll(t time.Time, price float64) {
	if !e.pos.Open {
		return
	}
	e.closePosition(t, price)
}

func (e *Engine) openPosition(t time.Time, price, signal float64) {
	side := Long
	if signal < 0 {
		side = Short
	}

	// Sized against post-close capital, before the entry charge.
	capAtEntry := e.capital
	fraction := math.Abs(signal)
	entryCost := e.cost.Cost(capAtEntry * fraction)
	e.capital -= entryCost

	e.pos = Position{
		Open:           true,
		Side:           side,
		Fraction:       fraction,
		EntryPrice:     price,
		EntryTime:      t,
		CapitalAtEntry: capAtEntry,
		EntryCost:      entryCost,
	}
}

func (e *Engine) closePosition(t time.Time, price float64) {
	p := e.pos
	e.pos = Position{}

	gross := float64(p.Side) * (price - p.EntryPrice) / p.EntryPrice * p.Notional()
	// Exit cost applies to the notional revalued at the exit price.
	exitCost := e.cost.Cost(p.Notional() * price / p.EntryPrice)

	e.capital += gross - exitCost

	e.trades = append(e.trades, Trade{
		EntryTime:       p.EntryTime,
		ExitTime:        t,
		EntryPrice:      p.EntryPrice,
		ExitPrice:       price,
		Side:            p.Side,
		Fraction:        p.Fraction,
		GrossPnL:        gross,
		TransactionCost: p.EntryCost + exitCost,
		NetPnL:          gross - p.EntryCost - exitCost,
		HoldPeriod:      t.Sub(p.EntryTime),
	})
}

func (e *Engine) mark(b Bar) {
	equity := e.capital
	position := 0.0

	if e.pos.Open {
		equity += float64(e.pos.Side) * (b.Price - e.pos.EntryPrice) / e.pos.EntryPrice * e.pos.Notional()
		position = float64(e.pos.Side) * e.pos.Fraction
	}

	if equity > e.peak {
		e.peak = equity
	}
	drawdown := 0.0
	if e.peak > 0 {
		drawdown = (equity - e.peak) / e.peak
	}

	e.curve = append(e.curve, EquityPoint{
		Time:     b.Time,
		Equity:   equity,
		Price:    b.Price,
		Signal:   b.Signal,
		Position: position,
		Drawdown: drawdown,
	})
}

// InitialCapital returns the configured starting capital.
func (e *Engine) InitialCapital() float64 { return e.initial }

// Capital returns the current realized capital, excluding any
// unrealized PnL of an open position.
func (e *Engine) Capital() float64 { return e.capital }

// InPosition reports whether a position is currently open.
func (e *Engine) InPosition() bool { return e.pos.Open }

// Trades returns the closed-trade ledger accumulated so far.
func (e *Engine) Trades() TradeLedger { return e.trades }

// Equity returns the equity curve accumulated so far.
func (e *Engine) Equity() EquityCurve { return e.curve }
