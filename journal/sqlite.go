package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists runs, trades and equity points to a SQLite
// database for post-hoc querying.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, side, fraction, entry_price, exit_price, entry_time, exit_time, gross_pnl, transaction_cost, net_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Side, t.Fraction, t.EntryPrice, t.ExitPrice,
		t.EntryTime, t.ExitTime, t.GrossPnL, t.TransactionCost, t.NetPnL,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, equity, price, signal, position, drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Equity, e.Price, e.Signal, e.Position, e.Drawdown,
	)
	return err
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, dataset, initial_capital, cost_rate, start_time, end_time,
		 final_capital, total_pnl, total_cost, trades, wins, losses,
		 return_pct, cagr_pct, sharpe_ratio, max_drawdown_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Dataset, r.InitialCapital, r.CostRate, r.Start, r.End,
		r.FinalCapital, r.TotalPnL, r.TotalCost, r.Trades, r.Wins, r.Losses,
		r.ReturnPct, r.CAGRPct, r.SharpeRatio, r.MaxDrawdownPct,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
