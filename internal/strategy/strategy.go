// Package strategy provides trading strategy implementations.
//
// A strategy maps a validated price series to one PositionState per bar.
// sma_crossover is a stateless per-bar rule; rsi_threshold carries position
// memory and is implemented as an explicit state walk over the dates.
package strategy

import (
	"fmt"
	"math"
	"sync"

	"github.com/quantbench/backtester/pkg/types"
	"go.uber.org/zap"
)

// Strategy is the interface all strategies implement.
type Strategy interface {
	Name() string
	Description() string

	// MinBars is the smallest series length the strategy can evaluate.
	MinBars() int

	// Positions returns one PositionState per input bar, same order.
	Positions(bars []types.PriceBar) []types.PositionState
}

// Factory builds a strategy from its named numeric parameters.
type Factory func(params map[string]float64) (Strategy, error)

// Registry manages the available strategies.
type Registry struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	factories map[types.StrategyKind]Factory
}

// NewRegistry creates a registry with the built-in strategies registered.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger:    logger,
		factories: make(map[types.StrategyKind]Factory),
	}

	r.Register(types.StrategySMACrossover, func(params map[string]float64) (Strategy, error) {
		short, err := intParam(params, "shortPeriod")
		if err != nil {
			return nil, err
		}
		long, err := intParam(params, "longPeriod")
		if err != nil {
			return nil, err
		}
		return NewSMACrossover(short, long)
	})

	r.Register(types.StrategyRSIThreshold, func(params map[string]float64) (Strategy, error) {
		period, err := intParam(params, "period")
		if err != nil {
			return nil, err
		}
		oversold, ok := params["oversold"]
		if !ok {
			return nil, &types.InvalidParameterError{Param: "oversold", Reason: "missing"}
		}
		overbought, ok := params["overbought"]
		if !ok {
			return nil, &types.InvalidParameterError{Param: "overbought", Reason: "missing"}
		}
		return NewRSIThreshold(period, oversold, overbought)
	})

	return r
}

// Register registers a strategy factory for a kind.
func (r *Registry) Register(kind types.StrategyKind, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Create builds a strategy instance for the given kind and parameters.
func (r *Registry) Create(kind types.StrategyKind, params map[string]float64) (Strategy, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, &types.InvalidParameterError{
			Param:  "strategy",
			Reason: fmt.Sprintf("unknown strategy kind %q", kind),
		}
	}
	return factory(params)
}

// List returns the registered strategy kinds.
func (r *Registry) List() []types.StrategyKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]types.StrategyKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	return kinds
}

// intParam extracts a whole-valued parameter.
func intParam(params map[string]float64, name string) (int, error) {
	v, ok := params[name]
	if !ok {
		return 0, &types.InvalidParameterError{Param: name, Reason: "missing"}
	}
	if v != math.Trunc(v) {
		return 0, &types.InvalidParameterError{Param: name, Reason: "must be an integer"}
	}
	return int(v), nil
}

// closes extracts the closing prices of a series as float64 for indicator math.
func closes(bars []types.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		out[i], _ = bar.Close.Float64()
	}
	return out
}
