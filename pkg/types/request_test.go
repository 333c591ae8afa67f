package types

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validRequest() BacktestRequest {
	return BacktestRequest{
		Ticker:         "AAPL",
		StartDate:      "2024-01-01",
		EndDate:        "2024-06-01",
		Strategy:       StrategySMACrossover,
		Parameters:     map[string]float64{"shortPeriod": 20, "longPeriod": 50},
		InitialCapital: decimal.NewFromInt(10000),
	}
}

func TestRequestValidate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	req := validRequest()
	if err := req.Validate(now); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*BacktestRequest)
		param  string
	}{
		{"empty ticker", func(r *BacktestRequest) { r.Ticker = "" }, "ticker"},
		{"ticker with digits", func(r *BacktestRequest) { r.Ticker = "AAPL1" }, "ticker"},
		{"ticker too long", func(r *BacktestRequest) { r.Ticker = "ABCDEFGHIJK" }, "ticker"},
		{"bad start date", func(r *BacktestRequest) { r.StartDate = "01/01/2024" }, "startDate"},
		{"bad end date", func(r *BacktestRequest) { r.EndDate = "June 2024" }, "endDate"},
		{"start equals end", func(r *BacktestRequest) { r.EndDate = r.StartDate }, "startDate"},
		{"start after end", func(r *BacktestRequest) { r.StartDate = "2024-07-01" }, "startDate"},
		{"future end date", func(r *BacktestRequest) { r.EndDate = "2025-06-01" }, "endDate"},
		{"capital below minimum", func(r *BacktestRequest) { r.InitialCapital = decimal.NewFromInt(999) }, "initialCapital"},
		{"unknown strategy", func(r *BacktestRequest) { r.Strategy = "momentum" }, "strategy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)

			err := req.Validate(now)
			var invalid *InvalidParameterError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want InvalidParameterError", err)
			}
			if invalid.Param != tc.param {
				t.Errorf("param = %s, want %s", invalid.Param, tc.param)
			}
		})
	}
}

func TestRequestTickerAllowsClassShares(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, ticker := range []string{"BRK.B", "BF-B", "spy"} {
		req := validRequest()
		req.Ticker = ticker
		if err := req.Validate(now); err != nil {
			t.Errorf("ticker %q rejected: %v", ticker, err)
		}
	}
}

func TestRequestRange(t *testing.T) {
	req := validRequest()
	start, end := req.Range()

	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %s", end)
	}
}
