// Package journal persists backtest output: closed trades, equity
// points and run summaries. Records are append-only history; nothing
// here mutates or deletes.
package journal

import "time"

// TradeRecord is one closed trade.
type TradeRecord struct {
	TradeID         string
	RunID           string
	Side            string // LONG or SHORT
	Fraction        float64
	EntryPrice      float64
	ExitPrice       float64
	EntryTime       time.Time
	ExitTime        time.Time
	GrossPnL        float64
	TransactionCost float64
	NetPnL          float64
}

// EquityRecord is one point of the equity curve.
type EquityRecord struct {
	RunID    string
	Time     time.Time
	Equity   float64
	Price    float64
	Signal   float64
	Position float64
	Drawdown float64
}

// RunRecord summarizes one finished backtest run.
type RunRecord struct {
	RunID   string
	Created time.Time
	Dataset string

	InitialCapital float64
	CostRate       float64

	Start time.Time
	End   time.Time

	FinalCapital float64
	TotalPnL     float64
	TotalCost    float64

	Trades int
	Wins   int
	Losses int

	ReturnPct      float64
	CAGRPct        float64
	SharpeRatio    float64
	MaxDrawdownPct float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}
