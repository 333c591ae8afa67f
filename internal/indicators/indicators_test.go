package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMAWarmupAndValues(t *testing.T) {
	prices := []float64{10, 11, 9, 12, 8, 15}

	sma2 := SMA(prices, 2)
	if len(sma2) != len(prices) {
		t.Fatalf("SMA output length = %d, want %d", len(sma2), len(prices))
	}
	if !math.IsNaN(sma2[0]) {
		t.Errorf("SMA2[0] should be undefined, got %v", sma2[0])
	}
	want2 := []float64{math.NaN(), 10.5, 10, 10.5, 10, 11.5}
	for i := 1; i < len(prices); i++ {
		if !almostEqual(sma2[i], want2[i]) {
			t.Errorf("SMA2[%d] = %v, want %v", i, sma2[i], want2[i])
		}
	}

	sma3 := SMA(prices, 3)
	if !math.IsNaN(sma3[0]) || !math.IsNaN(sma3[1]) {
		t.Errorf("SMA3 warmup not NaN: %v %v", sma3[0], sma3[1])
	}
	want3 := []float64{math.NaN(), math.NaN(), 10, 32.0 / 3, 29.0 / 3, 35.0 / 3}
	for i := 2; i < len(prices); i++ {
		if !almostEqual(sma3[i], want3[i]) {
			t.Errorf("SMA3[%d] = %v, want %v", i, sma3[i], want3[i])
		}
	}
}

func TestSMAWindowLongerThanSeries(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("SMA[%d] = %v, want NaN for window longer than series", i, v)
		}
	}
}

func TestRSIKnownValues(t *testing.T) {
	prices := []float64{10, 11, 12, 11.5, 10, 10.5, 11.5, 12.5}
	rsi := RSI(prices, 2)

	if len(rsi) != len(prices) {
		t.Fatalf("RSI output length = %d, want %d", len(rsi), len(prices))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(rsi[i]) {
			t.Errorf("RSI[%d] should be undefined, got %v", i, rsi[i])
		}
	}

	// Trailing-2 deltas: both gains at i=2, mixed at i=3, both losses at i=4.
	want := map[int]float64{
		2: 100,
		3: 100 - 100/(1+0.5/0.25),
		4: 0,
		5: 100 - 100/(1+(0.25/0.75)),
		6: 100,
		7: 100,
	}
	for i, w := range want {
		if !almostEqual(rsi[i], w) {
			t.Errorf("RSI[%d] = %v, want %v", i, rsi[i], w)
		}
	}
}

func TestRSIConstantSeriesIsHundred(t *testing.T) {
	prices := []float64{50, 50, 50, 50, 50, 50}
	rsi := RSI(prices, 3)
	for i := 3; i < len(prices); i++ {
		if rsi[i] != 100 {
			t.Errorf("RSI[%d] = %v, want 100 for zero average loss", i, rsi[i])
		}
	}
}

func TestRSIAllLossesIsZero(t *testing.T) {
	prices := []float64{20, 19, 18, 17, 16}
	rsi := RSI(prices, 3)
	for i := 3; i < len(prices); i++ {
		if !almostEqual(rsi[i], 0) {
			t.Errorf("RSI[%d] = %v, want 0 for zero average gain", i, rsi[i])
		}
	}
}
