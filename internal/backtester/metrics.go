package backtester

import (
	"math"

	"github.com/quantbench/backtester/pkg/types"
	"github.com/shopspring/decimal"
)

// tradingDaysPerYear is the annualization convention for volatility and
// Sharpe; annualized return uses the calendar span instead.
const tradingDaysPerYear = 252

// MetricsCalculator reduces a portfolio value series and trade log into
// summary statistics. Degenerate inputs (zero volatility, zero elapsed days,
// zero trades) produce well-defined zeros, never NaN.
type MetricsCalculator struct{}

// NewMetricsCalculator creates a metrics calculator.
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// Calculate computes all performance metrics for a completed run.
// Percentage outputs are rounded to two decimal places.
func (mc *MetricsCalculator) Calculate(
	snapshots []types.PortfolioSnapshot,
	trades []types.Trade,
	initialCapital decimal.Decimal,
) types.PerformanceMetrics {
	if len(snapshots) == 0 {
		return types.PerformanceMetrics{
			TotalReturn:      decimal.Zero,
			AnnualizedReturn: decimal.Zero,
			Volatility:       decimal.Zero,
			SharpeRatio:      decimal.Zero,
			MaxDrawdown:      decimal.Zero,
			WinRate:          decimal.Zero,
		}
	}

	initial, _ := initialCapital.Float64()
	final, _ := snapshots[len(snapshots)-1].PortfolioValue.Float64()

	totalReturn := (final - initial) / initial * 100

	// Calendar-day span between the first and last bar; single-day and
	// degenerate ranges fall back to the unannualized figure.
	daysElapsed := int(snapshots[len(snapshots)-1].Date.Sub(snapshots[0].Date).Hours() / 24)
	annualizedReturn := totalReturn
	if daysElapsed > 0 {
		annualizedReturn = (math.Pow(final/initial, 365/float64(daysElapsed)) - 1) * 100
	}

	returns := dailyReturns(snapshots)

	var volatility, sharpe float64
	if len(returns) > 1 {
		dailyStd := stdDev(returns)
		volatility = dailyStd * math.Sqrt(tradingDaysPerYear) * 100
		if dailyStd > 0 {
			sharpe = mean(returns) / dailyStd * math.Sqrt(tradingDaysPerYear)
		}
	}

	maxDrawdown := maxDrawdownPct(snapshots)
	profitable, roundTrips := roundTripWins(trades)

	var winRate float64
	if roundTrips > 0 {
		winRate = float64(profitable) / float64(roundTrips) * 100
	}

	return types.PerformanceMetrics{
		TotalReturn:      round2(totalReturn),
		AnnualizedReturn: round2(annualizedReturn),
		Volatility:       round2(volatility),
		SharpeRatio:      round2(sharpe),
		MaxDrawdown:      round2(maxDrawdown),
		WinRate:          round2(winRate),
		TotalTrades:      len(trades),
		ProfitableTrades: profitable,
	}
}

// dailyReturns converts the portfolio value series into day-over-day
// fractional returns.
func dailyReturns(snapshots []types.PortfolioSnapshot) []float64 {
	if len(snapshots) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(snapshots)-1)
	for i := 1; i < len(snapshots); i++ {
		prev, _ := snapshots[i-1].PortfolioValue.Float64()
		curr, _ := snapshots[i].PortfolioValue.Float64()
		if prev == 0 {
			continue
		}
		returns = append(returns, (curr-prev)/prev)
	}
	return returns
}

// maxDrawdownPct scans the value series once with a running peak and returns
// the largest peak-to-trough decline as a positive percentage.
func maxDrawdownPct(snapshots []types.PortfolioSnapshot) float64 {
	var maxDD float64
	peak := math.Inf(-1)
	for _, s := range snapshots {
		v, _ := s.PortfolioValue.Float64()
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// roundTripWins pairs trades into chronological (buy, sell) round trips and
// counts the profitable ones. A trailing unmatched buy (position still open
// at series end) is excluded.
func roundTripWins(trades []types.Trade) (profitable, roundTrips int) {
	for i := 0; i+1 < len(trades); i++ {
		if trades[i].Action != types.TradeActionBuy || trades[i+1].Action != types.TradeActionSell {
			continue
		}
		roundTrips++
		if trades[i+1].Value.GreaterThan(trades[i].Value) {
			profitable++
		}
		i++
	}
	return profitable, roundTrips
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - m
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(math.Round(v*100) / 100)
}
