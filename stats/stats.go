// Package stats computes summary performance statistics from a
// finished backtest. Compute is a pure function of the run output: it
// holds no state and may be called repeatedly on the same result.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/backtester/backtest"
)

const (
	daysPerYear    = 365.25
	secondsPerYear = daysPerYear * 24 * 3600
)

// Summary is the full set of performance statistics for one run.
// Percent fields are expressed in percent, not fractions.
type Summary struct {
	InitialCapital       float64
	FinalCapital         float64
	TotalPnL             float64
	TotalTransactionCost float64
	FinalReturnPct       float64

	CAGRPct             float64
	AnnualizedReturnPct float64
	SharpeRatio         float64
	CalmarRatio         float64
	MaxDrawdownPct      float64

	NumDays     int
	WinningDays int
	LosingDays  int
	BestDayPnL  float64
	WorstDayPnL float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRatePct    float64

	AvgWinningTrade float64
	AvgLosingTrade  float64
	BestTrade       float64
	WorstTrade      float64
	AvgHoldSeconds  float64
}

// Compute derives the summary from a run result.
//
// It fails with backtest.ErrInsufficientData when the equity curve is
// empty or the bar series spans zero time, since annualized figures are
// undefined there. Zero-variance returns and zero drawdown are not
// errors: Sharpe falls back to 0 and Calmar to NaN.
func Compute(res backtest.Result) (Summary, error) {
	if len(res.Equity) == 0 {
		return Summary{}, fmt.Errorf("%w: empty equity curve", backtest.ErrInsufficientData)
	}

	years := res.End.Sub(res.Start).Hours() / 24 / daysPerYear
	if years <= 0 {
		return Summary{}, fmt.Errorf("%w: bar series spans zero time", backtest.ErrInsufficientData)
	}

	s := Summary{
		InitialCapital: res.InitialCapital,
		FinalCapital:   res.FinalCapital,
	}
	s.TotalPnL = s.FinalCapital - s.InitialCapital
	s.FinalReturnPct = s.TotalPnL / s.InitialCapital * 100

	if s.FinalCapital <= 0 {
		s.CAGRPct = -100
	} else {
		s.CAGRPct = (math.Pow(s.FinalCapital/s.InitialCapital, 1/years) - 1) * 100
	}
	s.AnnualizedReturnPct = (s.FinalCapital/s.InitialCapital - 1) / years * 100

	fillTradeStats(&s, res.Trades)
	fillEquityStats(&s, res.Equity)
	fillDailyStats(&s, res.Equity, res.InitialCapital)

	if s.MaxDrawdownPct == 0 {
		s.CalmarRatio = math.NaN()
	} else {
		s.CalmarRatio = s.CAGRPct / math.Abs(s.MaxDrawdownPct)
	}

	return s, nil
}

func fillTradeStats(s *Summary, trades backtest.TradeLedger) {
	var winSum, lossSum, holdSum float64

	s.BestTrade = math.Inf(-1)
	s.WorstTrade = math.Inf(1)

	for _, t := range trades {
		s.TotalTrades++
		s.TotalTransactionCost += t.TransactionCost
		holdSum += t.HoldPeriod.Seconds()

		if t.NetPnL > 0 {
			s.WinningTrades++
			winSum += t.NetPnL
		} else if t.NetPnL < 0 {
			s.LosingTrades++
			lossSum += t.NetPnL
		}
		if t.NetPnL > s.BestTrade {
			s.BestTrade = t.NetPnL
		}
		if t.NetPnL < s.WorstTrade {
			s.WorstTrade = t.NetPnL
		}
	}

	if s.TotalTrades == 0 {
		s.BestTrade = 0
		s.WorstTrade = 0
		return
	}

	s.WinRatePct = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	if s.WinningTrades > 0 {
		s.AvgWinningTrade = winSum / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLosingTrade = lossSum / float64(s.LosingTrades)
	}
	s.AvgHoldSeconds = holdSum / float64(s.TotalTrades)
}

func fillEquityStats(s *Summary, curve backtest.EquityCurve) {
	minDD := 0.0
	for _, p := range curve {
		if p.Drawdown < minDD {
			minDD = p.Drawdown
		}
	}
	s.MaxDrawdownPct = minDD * 100

	s.SharpeRatio = sharpe(curve)
}

// sharpe annualizes mean/stdev of per-bar returns by the bar frequency
// observed in the curve itself (median inter-bar interval).
func sharpe(curve backtest.EquityCurve) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	intervals := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev != 0 {
			returns = append(returns, curve[i].Equity/prev-1)
		}
		intervals = append(intervals, curve[i].Time.Sub(curve[i-1].Time).Seconds())
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	periodsPerYear := secondsPerYear / median(intervals)
	return mean / std * math.Sqrt(periodsPerYear)
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// fillDailyStats groups the equity curve by calendar date. A day's PnL
// is its last equity against the previous day's last equity; the first
// day is measured against initial capital.
func fillDailyStats(s *Summary, curve backtest.EquityCurve, initial float64) {
	type day struct {
		date time.Time
		last float64
	}
	var days []day

	for _, p := range curve {
		d := p.Time.Truncate(24 * time.Hour)
		if len(days) > 0 && days[len(days)-1].date.Equal(d) {
			days[len(days)-1].last = p.Equity
			continue
		}
		days = append(days, day{date: d, last: p.Equity})
	}

	first := days[0].date
	last := days[len(days)-1].date
	s.NumDays = int(last.Sub(first).Hours()/24) + 1

	s.BestDayPnL = math.Inf(-1)
	s.WorstDayPnL = math.Inf(1)

	prev := initial
	for _, d := range days {
		pnl := d.last - prev
		prev = d.last

		if pnl > 0 {
			s.WinningDays++
		} else if pnl < 0 {
			s.LosingDays++
		}
		if pnl > s.BestDayPnL {
			s.BestDayPnL = pnl
		}
		if pnl < s.WorstDayPnL {
			s.WorstDayPnL = pnl
		}
	}
}
