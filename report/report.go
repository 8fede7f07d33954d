// Package report renders a run summary as fixed-width text.
package report

import (
	"bytes"
	"fmt"
	"io"
	"text/template"

	"github.com/rustyeddy/backtester/stats"
)

var summaryFuncs = template.FuncMap{
	"f2": func(x float64) string { return fmt.Sprintf("%.2f", x) },
	"f4": func(x float64) string { return fmt.Sprintf("%.4f", x) },
}

const SummaryTemplate = `==================================================
=== Backtest Summary ===
Initial Capital               : {{f2 .InitialCapital}}
Final Capital                 : {{f2 .FinalCapital}}
Total PnL                     : {{f2 .TotalPnL}}
Total Transaction Cost        : {{f2 .TotalTransactionCost}}
Final Returns                 : {{f2 .FinalReturnPct}}%
CAGR                          : {{f4 .CAGRPct}}%
Annualized Returns            : {{f4 .AnnualizedReturnPct}}%
Sharpe Ratio                  : {{f4 .SharpeRatio}}
Calmar Ratio                  : {{f4 .CalmarRatio}}
Maximum Drawdown              : {{f4 .MaxDrawdownPct}}%
No. of Days                   : {{.NumDays}}
Winning Days                  : {{.WinningDays}}
Losing Days                   : {{.LosingDays}}
Best Day PnL                  : {{f2 .BestDayPnL}}
Worst Day PnL                 : {{f2 .WorstDayPnL}}
Total Trades                  : {{.TotalTrades}}
Winning Trades                : {{.WinningTrades}}
Losing Trades                 : {{.LosingTrades}}
Win Rate (%)                  : {{f2 .WinRatePct}}%
Average Winning Trade         : {{f4 .AvgWinningTrade}}
Average Losing Trade          : {{f4 .AvgLosingTrade}}
Best Trade                    : {{f4 .BestTrade}}
Worst Trade                   : {{f4 .WorstTrade}}
Average Hold Period (seconds) : {{f2 .AvgHoldSeconds}}
==================================================
`

// Write renders the summary to w.
func Write(w io.Writer, s stats.Summary) error {
	t, err := template.New("summary").Funcs(summaryFuncs).Parse(SummaryTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, s)
}

// Render returns the summary as a string.
func Render(s stats.Summary) (string, error) {
	buf := new(bytes.Buffer)
	if err := Write(buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}
