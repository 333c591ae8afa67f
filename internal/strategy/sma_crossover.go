package strategy

import (
	"fmt"
	"math"

	"github.com/quantbench/backtester/internal/indicators"
	"github.com/quantbench/backtester/pkg/types"
)

// SMACrossover holds a long position whenever the short moving average is
// strictly above the long one, flat otherwise. The per-bar rule is stateless;
// trades fall out of comparing consecutive bars downstream.
type SMACrossover struct {
	shortPeriod int
	longPeriod  int
}

// NewSMACrossover validates the window parameters and builds the strategy.
func NewSMACrossover(shortPeriod, longPeriod int) (*SMACrossover, error) {
	if shortPeriod < 1 || shortPeriod > 50 {
		return nil, &types.InvalidParameterError{Param: "shortPeriod", Reason: "must be in [1, 50]"}
	}
	if longPeriod < 2 || longPeriod > 200 {
		return nil, &types.InvalidParameterError{Param: "longPeriod", Reason: "must be in [2, 200]"}
	}
	if shortPeriod >= longPeriod {
		return nil, &types.InvalidParameterError{Param: "shortPeriod", Reason: "must be less than longPeriod"}
	}
	return &SMACrossover{shortPeriod: shortPeriod, longPeriod: longPeriod}, nil
}

func (s *SMACrossover) Name() string { return string(types.StrategySMACrossover) }

func (s *SMACrossover) Description() string {
	return fmt.Sprintf("SMA crossover (%d/%d)", s.shortPeriod, s.longPeriod)
}

// MinBars is the longest indicator window.
func (s *SMACrossover) MinBars() int { return s.longPeriod }

func (s *SMACrossover) Positions(bars []types.PriceBar) []types.PositionState {
	return crossoverPositions(closes(bars), s.shortPeriod, s.longPeriod)
}

// crossoverPositions is the bare position rule: long iff both averages are
// defined and the short one is strictly greater. Equal windows can never
// satisfy the strict inequality, so the rule degenerates to always-flat.
func crossoverPositions(prices []float64, shortPeriod, longPeriod int) []types.PositionState {
	short := indicators.SMA(prices, shortPeriod)
	long := indicators.SMA(prices, longPeriod)

	out := make([]types.PositionState, len(prices))
	for i := range prices {
		if !math.IsNaN(short[i]) && !math.IsNaN(long[i]) && short[i] > long[i] {
			out[i] = types.PositionLong
		} else {
			out[i] = types.PositionFlat
		}
	}
	return out
}
