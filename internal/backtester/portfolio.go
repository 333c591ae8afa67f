package backtester

import (
	"time"

	"github.com/quantbench/backtester/pkg/types"
	"github.com/shopspring/decimal"
)

// Portfolio is the running cash/share ledger of a single-asset simulation.
// Buys are all-in with exact fractional shares; sells close the full
// position. Share counts use decimal division (no rounding to whole
// shares), so trade values track the ledger exactly.
type Portfolio struct {
	cash   decimal.Decimal
	shares decimal.Decimal
}

// NewPortfolio creates a ledger holding only the initial capital.
func NewPortfolio(initialCapital decimal.Decimal) *Portfolio {
	return &Portfolio{cash: initialCapital, shares: decimal.Zero}
}

// Cash returns the available cash.
func (p *Portfolio) Cash() decimal.Decimal { return p.cash }

// Shares returns the held share count.
func (p *Portfolio) Shares() decimal.Decimal { return p.shares }

// BuyAll converts all cash into shares at the given price.
func (p *Portfolio) BuyAll(date time.Time, price decimal.Decimal) types.Trade {
	shares := p.cash.Div(price)
	value := shares.Mul(price)
	p.cash = p.cash.Sub(value)
	p.shares = p.shares.Add(shares)

	return types.Trade{
		Date:   date,
		Action: types.TradeActionBuy,
		Price:  price,
		Shares: shares,
		Value:  value,
	}
}

// SellAll converts the full position back into cash at the given price.
func (p *Portfolio) SellAll(date time.Time, price decimal.Decimal) types.Trade {
	shares := p.shares
	value := shares.Mul(price)
	p.cash = p.cash.Add(value)
	p.shares = decimal.Zero

	return types.Trade{
		Date:   date,
		Action: types.TradeActionSell,
		Price:  price,
		Shares: shares,
		Value:  value,
	}
}

// Snapshot values the ledger at the given close price.
func (p *Portfolio) Snapshot(date time.Time, price decimal.Decimal) types.PortfolioSnapshot {
	stockValue := p.shares.Mul(price)
	return types.PortfolioSnapshot{
		Date:           date,
		Cash:           p.cash,
		SharesHeld:     p.shares,
		StockValue:     stockValue,
		PortfolioValue: p.cash.Add(stockValue),
	}
}

// SimulatePortfolio replays the price series once in date order, turning the
// per-bar position decisions into trades and snapshots. Transitions execute
// at the day's close; each snapshot reflects the post-transaction balances.
// An open position at series end stays open.
func SimulatePortfolio(
	bars []types.PriceBar,
	positions []types.PositionState,
	initialCapital decimal.Decimal,
) ([]types.PortfolioSnapshot, []types.Trade) {
	portfolio := NewPortfolio(initialCapital)
	snapshots := make([]types.PortfolioSnapshot, 0, len(bars))
	trades := make([]types.Trade, 0)

	prev := types.PositionFlat
	for i, bar := range bars {
		curr := positions[i]
		switch {
		case prev == types.PositionFlat && curr == types.PositionLong:
			if portfolio.Cash().IsPositive() {
				trades = append(trades, portfolio.BuyAll(bar.Date, bar.Close))
			}
		case prev == types.PositionLong && curr == types.PositionFlat:
			if portfolio.Shares().IsPositive() {
				trades = append(trades, portfolio.SellAll(bar.Date, bar.Close))
			}
		}
		snapshots = append(snapshots, portfolio.Snapshot(bar.Date, bar.Close))
		prev = curr
	}

	return snapshots, trades
}
