package journal

import (
	"database/sql"
	"fmt"
)

// GetRun returns a single run summary by ID.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, created, dataset, initial_capital, cost_rate, start_time, end_time,
		       final_capital, total_pnl, total_cost, trades, wins, losses,
		       return_pct, cagr_pct, sharpe_ratio, max_drawdown_pct
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.Created,
		&rec.Dataset,
		&rec.InitialCapital,
		&rec.CostRate,
		&rec.Start,
		&rec.End,
		&rec.FinalCapital,
		&rec.TotalPnL,
		&rec.TotalCost,
		&rec.Trades,
		&rec.Wins,
		&rec.Losses,
		&rec.ReturnPct,
		&rec.CAGRPct,
		&rec.SharpeRatio,
		&rec.MaxDrawdownPct,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListTradesByRun returns a run's trades ordered by exit time.
func (j *SQLiteJournal) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, side, fraction, entry_price, exit_price, entry_time, exit_time, gross_pnl, transaction_cost, net_pnl
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.RunID,
			&rec.Side,
			&rec.Fraction,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.GrossPnL,
			&rec.TransactionCost,
			&rec.NetPnL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRun returns a run's equity curve ordered by time.
func (j *SQLiteJournal) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity, price, signal, position, drawdown
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Time,
			&rec.Equity,
			&rec.Price,
			&rec.Signal,
			&rec.Position,
			&rec.Drawdown,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
