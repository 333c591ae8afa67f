// Package backtester provides the strategy simulation and
// performance-measurement engine: series validation, portfolio replay,
// benchmark tracking, and metric computation.
package backtester

import (
	"fmt"

	"github.com/quantbench/backtester/pkg/types"
	"github.com/shopspring/decimal"
)

// ValidateSeries checks the price-series preconditions: at least one bar,
// strictly ascending unique dates, positive closes. The engine runs no
// simulation until the whole series passes.
func ValidateSeries(bars []types.PriceBar) error {
	if len(bars) == 0 {
		return types.ErrEmptySeries
	}

	for i, bar := range bars {
		if bar.Close.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("bar %s: close must be positive, got %s",
				bar.Date.Format(types.DateFormat), bar.Close)
		}
		if i > 0 && !bar.Date.After(bars[i-1].Date) {
			return fmt.Errorf("bar %s: dates must be strictly ascending",
				bar.Date.Format(types.DateFormat))
		}
	}
	return nil
}
