package strategy

import (
	"fmt"
	"math"

	"github.com/quantbench/backtester/internal/indicators"
	"github.com/quantbench/backtester/pkg/types"
)

// RSIThreshold enters a long position when RSI crosses down to or through
// the oversold level and exits when it crosses up to or through the
// overbought level. Between trigger dates the prior state persists, which
// makes the position series path-dependent.
type RSIThreshold struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIThreshold validates the parameters and builds the strategy.
func NewRSIThreshold(period int, oversold, overbought float64) (*RSIThreshold, error) {
	if period < 2 || period > 50 {
		return nil, &types.InvalidParameterError{Param: "period", Reason: "must be in [2, 50]"}
	}
	if oversold < 0 || oversold > 50 {
		return nil, &types.InvalidParameterError{Param: "oversold", Reason: "must be in [0, 50]"}
	}
	if overbought < 50 || overbought > 100 {
		return nil, &types.InvalidParameterError{Param: "overbought", Reason: "must be in [50, 100]"}
	}
	if oversold >= overbought {
		return nil, &types.InvalidParameterError{Param: "oversold", Reason: "must be less than overbought"}
	}
	return &RSIThreshold{period: period, oversold: oversold, overbought: overbought}, nil
}

func (s *RSIThreshold) Name() string { return string(types.StrategyRSIThreshold) }

func (s *RSIThreshold) Description() string {
	return fmt.Sprintf("RSI threshold (%d, %g/%g)", s.period, s.oversold, s.overbought)
}

// MinBars is the RSI window plus the bar the first delta needs.
func (s *RSIThreshold) MinBars() int { return s.period + 1 }

// Positions walks the series with explicit position memory. A trigger needs
// RSI defined on both the current and previous bar, so the warmup region is
// always flat.
func (s *RSIThreshold) Positions(bars []types.PriceBar) []types.PositionState {
	rsi := indicators.RSI(closes(bars), s.period)

	out := make([]types.PositionState, len(bars))
	state := types.PositionFlat
	for i := range bars {
		if i > 0 && !math.IsNaN(rsi[i]) && !math.IsNaN(rsi[i-1]) {
			switch state {
			case types.PositionFlat:
				if rsi[i] <= s.oversold && rsi[i-1] > s.oversold {
					state = types.PositionLong
				}
			case types.PositionLong:
				if rsi[i] >= s.overbought && rsi[i-1] < s.overbought {
					state = types.PositionFlat
				}
			}
		}
		out[i] = state
	}
	return out
}
