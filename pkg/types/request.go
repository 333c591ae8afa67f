// Package types provides request types for the backtesting service.
package types

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire format for request date fields.
const DateFormat = "2006-01-02"

// MinInitialCapital is the smallest accepted starting capital.
var MinInitialCapital = decimal.NewFromInt(1000)

var tickerPattern = regexp.MustCompile(`^[A-Za-z.\-]{1,10}$`)

// BacktestRequest is the external contract for one backtest invocation.
// Strategy parameter ranges are validated by the strategy package; Validate
// covers everything else.
type BacktestRequest struct {
	Ticker         string             `json:"ticker"`
	StartDate      string             `json:"startDate"`
	EndDate        string             `json:"endDate"`
	Strategy       StrategyKind       `json:"strategy"`
	Parameters     map[string]float64 `json:"parameters"`
	InitialCapital decimal.Decimal    `json:"initialCapital"`
	UserID         string             `json:"userId,omitempty"`
}

// Validate checks ticker format, date range, and capital minimum.
func (r *BacktestRequest) Validate(now time.Time) error {
	if !tickerPattern.MatchString(r.Ticker) {
		return &InvalidParameterError{Param: "ticker", Reason: "must be 1-10 symbol characters"}
	}

	start, err := time.Parse(DateFormat, r.StartDate)
	if err != nil {
		return &InvalidParameterError{Param: "startDate", Reason: "must be YYYY-MM-DD"}
	}
	end, err := time.Parse(DateFormat, r.EndDate)
	if err != nil {
		return &InvalidParameterError{Param: "endDate", Reason: "must be YYYY-MM-DD"}
	}
	if !start.Before(end) {
		return &InvalidParameterError{Param: "startDate", Reason: "start date must be before end date"}
	}
	if end.After(now) {
		return &InvalidParameterError{Param: "endDate", Reason: "end date cannot be in the future"}
	}

	if r.InitialCapital.LessThan(MinInitialCapital) {
		return &InvalidParameterError{
			Param:  "initialCapital",
			Reason: fmt.Sprintf("must be at least %s", MinInitialCapital),
		}
	}

	switch r.Strategy {
	case StrategySMACrossover, StrategyRSIThreshold:
	default:
		return &InvalidParameterError{Param: "strategy", Reason: fmt.Sprintf("unsupported strategy %q", r.Strategy)}
	}

	return nil
}

// Range returns the parsed [start, end] dates. Validate must succeed first.
func (r *BacktestRequest) Range() (start, end time.Time) {
	start, _ = time.Parse(DateFormat, r.StartDate)
	end, _ = time.Parse(DateFormat, r.EndDate)
	return start, end
}
