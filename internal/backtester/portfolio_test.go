package backtester_test

import (
	"testing"

	"github.com/quantbench/backtester/internal/backtester"
	"github.com/quantbench/backtester/pkg/types"
	"github.com/shopspring/decimal"
)

func TestPortfolioLedger(t *testing.T) {
	p := backtester.NewPortfolio(decimal.NewFromInt(1000))

	buy := p.BuyAll(seriesStart, decimal.NewFromInt(8))
	if !buy.Shares.Equal(decimal.NewFromInt(125)) {
		t.Errorf("shares = %s, want 125", buy.Shares)
	}
	if !buy.Value.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("buy value = %s, want 1000", buy.Value)
	}
	if !p.Cash().IsZero() {
		t.Errorf("cash after all-in buy = %s, want 0", p.Cash())
	}

	snap := p.Snapshot(seriesStart, decimal.NewFromInt(10))
	if !snap.StockValue.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("stock value = %s, want 1250", snap.StockValue)
	}
	if !snap.PortfolioValue.Equal(decimal.NewFromInt(1250)) {
		t.Errorf("portfolio value = %s, want 1250", snap.PortfolioValue)
	}

	sell := p.SellAll(seriesStart.AddDate(0, 0, 1), decimal.NewFromInt(15))
	if !sell.Value.Equal(decimal.NewFromInt(1875)) {
		t.Errorf("sell value = %s, want 1875", sell.Value)
	}
	if !p.Cash().Equal(decimal.NewFromInt(1875)) || !p.Shares().IsZero() {
		t.Errorf("ledger after sell = %s cash, %s shares", p.Cash(), p.Shares())
	}
}

func TestSimulateOneSnapshotPerBar(t *testing.T) {
	bars := testBars(10, 11, 9, 12, 8)
	positions := make([]types.PositionState, len(bars))
	for i := range positions {
		positions[i] = types.PositionFlat
	}

	snapshots, trades := backtester.SimulatePortfolio(bars, positions, decimal.NewFromInt(1000))
	if len(snapshots) != len(bars) {
		t.Fatalf("snapshots = %d, want %d", len(snapshots), len(bars))
	}
	for i, s := range snapshots {
		if !s.Date.Equal(bars[i].Date) {
			t.Errorf("snapshot[%d] date = %s, want %s", i, s.Date, bars[i].Date)
		}
		if !s.PortfolioValue.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("flat portfolio value drifted: %s", s.PortfolioValue)
		}
	}
	if len(trades) != 0 {
		t.Errorf("trades = %d, want 0 for an all-flat run", len(trades))
	}
}

func TestSimulateOpenPositionStaysOpen(t *testing.T) {
	bars := testBars(10, 12, 14)
	positions := []types.PositionState{types.PositionFlat, types.PositionLong, types.PositionLong}

	snapshots, trades := backtester.SimulatePortfolio(bars, positions, decimal.NewFromInt(1200))
	if len(trades) != 1 || trades[0].Action != types.TradeActionBuy {
		t.Fatalf("trades = %+v, want a single open buy", trades)
	}

	last := snapshots[len(snapshots)-1]
	if !last.SharesHeld.Equal(decimal.NewFromInt(100)) {
		t.Errorf("final shares = %s, want 100 still held", last.SharesHeld)
	}
	if !last.PortfolioValue.Equal(decimal.NewFromInt(1400)) {
		t.Errorf("final value = %s, want 1400 marked at last close", last.PortfolioValue)
	}
}

func TestSimulateTradeCountInvariant(t *testing.T) {
	bars := testBars(10, 11, 12, 13, 14, 15, 16)
	F, L := types.PositionFlat, types.PositionLong

	cases := [][]types.PositionState{
		{F, F, F, F, F, F, F},
		{F, L, F, L, F, L, F},
		{F, L, L, F, F, L, L},
		{L, L, F, L, F, F, L},
	}

	for _, positions := range cases {
		_, trades := backtester.SimulatePortfolio(bars, positions, decimal.NewFromInt(1000))

		var buys, sells int
		for i, trade := range trades {
			if trade.Action == types.TradeActionBuy {
				if i%2 != 0 {
					t.Errorf("trade log does not alternate: %+v", trades)
				}
				buys++
			} else {
				sells++
			}
		}
		if diff := buys - sells; diff != 0 && diff != 1 {
			t.Errorf("buys-sells = %d for %v, want 0 or 1", diff, positions)
		}
	}
}
