package data

import (
	"context"
	"testing"
	"time"

	"github.com/quantbench/backtester/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeProvider struct {
	calls int
	bars  []types.PriceBar
}

func (f *fakeProvider) DailyCloses(_ context.Context, _ string, _, _ time.Time) ([]types.PriceBar, error) {
	f.calls++
	return f.bars, nil
}

func fixedBars() []types.PriceBar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []types.PriceBar{
		{Date: start, Close: decimal.NewFromInt(10)},
		{Date: start.AddDate(0, 0, 1), Close: decimal.NewFromFloat(10.5)},
	}
}

func TestStoreCachesSeries(t *testing.T) {
	upstream := &fakeProvider{bars: fixedBars()}
	store, err := NewStore(zap.NewNop(), t.TempDir(), upstream)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	first, err := store.DailyCloses(ctx, "aapl", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Fatalf("bars = %d, want 2", len(first))
	}

	second, err := store.DailyCloses(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if upstream.calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (second hit served from cache)", upstream.calls)
	}
	if !second[1].Close.Equal(first[1].Close) {
		t.Errorf("cached close = %s, want %s", second[1].Close, first[1].Close)
	}
}

func TestStoreReadsCacheFromDisk(t *testing.T) {
	dir := t.TempDir()
	upstream := &fakeProvider{bars: fixedBars()}

	warm, err := NewStore(zap.NewNop(), dir, upstream)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	if _, err := warm.DailyCloses(ctx, "MSFT", start, end); err != nil {
		t.Fatal(err)
	}

	// A fresh store over the same directory must not need the upstream.
	cold, err := NewStore(zap.NewNop(), dir, &fakeProvider{})
	if err != nil {
		t.Fatal(err)
	}
	bars, err := cold.DailyCloses(ctx, "MSFT", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Errorf("bars from disk cache = %d, want 2", len(bars))
	}
	if !bars[0].Close.Equal(decimal.NewFromInt(10)) {
		t.Errorf("close from disk cache = %s, want 10", bars[0].Close)
	}
}
