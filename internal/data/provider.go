// Package data provides historical price retrieval and caching. The engine
// itself never fetches data; a Provider is invoked by the API layer before
// simulation starts, and any failure there is a precondition failure that
// is never retried by the core.
package data

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/quantbench/backtester/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Provider returns the ordered daily closing bars for a ticker and range.
type Provider interface {
	DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]types.PriceBar, error)
}

// AlpacaConfig holds credentials and endpoints for the Alpaca data API.
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Feed      string
}

// AlpacaProvider fetches daily bars from the Alpaca market-data API.
type AlpacaProvider struct {
	client *marketdata.Client
	feed   string
	logger *zap.Logger
}

// NewAlpacaProvider creates a provider from the given credentials.
func NewAlpacaProvider(logger *zap.Logger, cfg AlpacaConfig) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.BaseURL != "" {
		opts.BaseURL = cfg.BaseURL
	}

	feed := cfg.Feed
	if feed == "" {
		feed = "iex"
	}

	return &AlpacaProvider{
		client: marketdata.NewClient(opts),
		feed:   feed,
		logger: logger,
	}
}

// DailyCloses fetches the daily bars for ticker in [start, end] and reduces
// them to dated closes.
func (p *AlpacaProvider) DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]types.PriceBar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	symbol := strings.ToUpper(ticker)
	alpacaBars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      marketdata.Feed(p.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching daily bars for %s: %w", symbol, err)
	}

	bars := make([]types.PriceBar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, types.PriceBar{
			Date:  ab.Timestamp.UTC().Truncate(24 * time.Hour),
			Close: decimal.NewFromFloat(ab.Close),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	p.logger.Debug("fetched daily bars",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)
	return bars, nil
}
