package backtester

import (
	"github.com/quantbench/backtester/pkg/types"
	"github.com/shopspring/decimal"
)

// BuyAndHold computes the passive benchmark series for the same capital:
// value[i] = initialCapital × close[i] / close[0]. Stateless, records no
// trades, and by construction equals the initial capital on the first bar.
func BuyAndHold(bars []types.PriceBar, initialCapital decimal.Decimal) []types.BenchmarkSnapshot {
	if len(bars) == 0 {
		return nil
	}

	firstClose := bars[0].Close
	out := make([]types.BenchmarkSnapshot, len(bars))
	out[0] = types.BenchmarkSnapshot{Date: bars[0].Date, Value: initialCapital}
	for i := 1; i < len(bars); i++ {
		out[i] = types.BenchmarkSnapshot{
			Date:  bars[i].Date,
			Value: initialCapital.Mul(bars[i].Close).Div(firstClose),
		}
	}
	return out
}
