// Package types provides shared type definitions for the backtesting service.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// StrategyKind identifies a supported trading strategy.
type StrategyKind string

const (
	StrategySMACrossover StrategyKind = "sma_crossover"
	StrategyRSIThreshold StrategyKind = "rsi_threshold"
)

// TradeAction represents buy or sell.
type TradeAction string

const (
	TradeActionBuy  TradeAction = "buy"
	TradeActionSell TradeAction = "sell"
)

// PositionState is the per-bar decision produced by a strategy.
type PositionState string

const (
	PositionFlat PositionState = "flat"
	PositionLong PositionState = "long"
)

// PriceBar is a single dated closing-price observation. A price series is
// an ascending, duplicate-free slice of PriceBars with positive closes.
type PriceBar struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// Trade is one executed buy or sell. Trades are created only at a position
// transition and are immutable once appended to the trade log.
type Trade struct {
	Date   time.Time       `json:"date"`
	Action TradeAction     `json:"action"`
	Price  decimal.Decimal `json:"price"`
	Shares decimal.Decimal `json:"shares"`
	Value  decimal.Decimal `json:"value"`
}

// PortfolioSnapshot records the post-transaction portfolio state for one bar.
type PortfolioSnapshot struct {
	Date           time.Time       `json:"date"`
	Cash           decimal.Decimal `json:"cash"`
	SharesHeld     decimal.Decimal `json:"sharesHeld"`
	StockValue     decimal.Decimal `json:"stockValue"`
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
}

// BenchmarkSnapshot is one point of the buy-and-hold comparison series.
type BenchmarkSnapshot struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// PerformanceMetrics are the summary statistics of a completed run.
// Percentage values are rounded to two decimal places.
type PerformanceMetrics struct {
	TotalReturn      decimal.Decimal `json:"totalReturn"`
	AnnualizedReturn decimal.Decimal `json:"annualizedReturn"`
	Volatility       decimal.Decimal `json:"volatility"`
	SharpeRatio      decimal.Decimal `json:"sharpeRatio"`
	MaxDrawdown      decimal.Decimal `json:"maxDrawdown"`
	WinRate          decimal.Decimal `json:"winRate"`
	TotalTrades      int             `json:"totalTrades"`
	ProfitableTrades int             `json:"profitableTrades"`
}

// BacktestResult is the aggregate output of one backtest run. It owns the
// trade log, both value series, and the metrics, and is never mutated after
// the engine returns it.
type BacktestResult struct {
	ID               string              `json:"id"`
	Ticker           string              `json:"ticker"`
	Strategy         StrategyKind        `json:"strategy"`
	Parameters       map[string]float64  `json:"parameters"`
	StartDate        time.Time           `json:"startDate"`
	EndDate          time.Time           `json:"endDate"`
	InitialCapital   decimal.Decimal     `json:"initialCapital"`
	FinalValue       decimal.Decimal     `json:"finalValue"`
	Trades           []Trade             `json:"trades"`
	Performance      PerformanceMetrics  `json:"performance"`
	PortfolioHistory []PortfolioSnapshot `json:"portfolioHistory"`
	BenchmarkHistory []BenchmarkSnapshot `json:"benchmarkHistory"`
	CompletedAt      time.Time           `json:"completedAt"`
}
