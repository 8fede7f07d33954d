package backtest

import "math"

// DefaultCostRate is 0.03% of traded notional per side.
const DefaultCostRate = 0.0003

// CostModel charges a flat percentage of traded notional. The rate is
// per side: an entry and an exit are two separate charges, never netted.
type CostModel struct {
	Rate float64
}

// Cost returns the transaction cost for trading the given notional.
// A negative notional is a short exposure; the cost applies to its
// magnitude.
func (m CostModel) Cost(notional float64) float64 {
	return math.Abs(notional) * m.Rate
}
