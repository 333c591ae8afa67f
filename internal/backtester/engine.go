package backtester

import (
	"strings"

	"github.com/quantbench/backtester/internal/strategy"
	"github.com/quantbench/backtester/pkg/types"
	"go.uber.org/zap"
)

// Engine is the backtest orchestrator. It validates a request against an
// already-fetched price series, evaluates the strategy, replays the
// portfolio alongside the buy-and-hold benchmark, and assembles the final
// result.
//
// Run is a pure function of its inputs: no clock, no randomness, no shared
// state between invocations. The caller assigns the result ID and completion
// timestamp before persisting, so re-running the same (series, config) pair
// yields an identical result.
type Engine struct {
	logger   *zap.Logger
	registry *strategy.Registry
	metrics  *MetricsCalculator
}

// NewEngine creates an engine backed by the given strategy registry.
func NewEngine(logger *zap.Logger, registry *strategy.Registry) *Engine {
	return &Engine{
		logger:   logger,
		registry: registry,
		metrics:  NewMetricsCalculator(),
	}
}

// Run executes one backtest. All validation happens before any simulation;
// a failed run surfaces no partial state.
func (e *Engine) Run(req *types.BacktestRequest, bars []types.PriceBar) (*types.BacktestResult, error) {
	if req.InitialCapital.LessThan(types.MinInitialCapital) {
		return nil, &types.InvalidParameterError{
			Param:  "initialCapital",
			Reason: "must be at least " + types.MinInitialCapital.String(),
		}
	}

	strat, err := e.registry.Create(req.Strategy, req.Parameters)
	if err != nil {
		return nil, err
	}

	if err := ValidateSeries(bars); err != nil {
		return nil, err
	}
	if len(bars) < strat.MinBars() {
		return nil, &types.InsufficientDataError{Required: strat.MinBars(), Got: len(bars)}
	}

	e.logger.Debug("running backtest",
		zap.String("ticker", req.Ticker),
		zap.String("strategy", strat.Description()),
		zap.Int("bars", len(bars)),
	)

	positions := strat.Positions(bars)
	snapshots, trades := SimulatePortfolio(bars, positions, req.InitialCapital)
	benchmark := BuyAndHold(bars, req.InitialCapital)
	performance := e.metrics.Calculate(snapshots, trades, req.InitialCapital)

	start, end := req.Range()
	if start.IsZero() {
		start = bars[0].Date
	}
	if end.IsZero() {
		end = bars[len(bars)-1].Date
	}

	params := make(map[string]float64, len(req.Parameters))
	for k, v := range req.Parameters {
		params[k] = v
	}

	result := &types.BacktestResult{
		Ticker:           strings.ToUpper(req.Ticker),
		Strategy:         req.Strategy,
		Parameters:       params,
		StartDate:        start,
		EndDate:          end,
		InitialCapital:   req.InitialCapital,
		FinalValue:       snapshots[len(snapshots)-1].PortfolioValue,
		Trades:           trades,
		Performance:      performance,
		PortfolioHistory: snapshots,
		BenchmarkHistory: benchmark,
	}

	e.logger.Info("backtest completed",
		zap.String("ticker", result.Ticker),
		zap.Int("trades", len(trades)),
		zap.String("totalReturn", performance.TotalReturn.String()),
	)

	return result, nil
}
