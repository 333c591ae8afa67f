package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quantbench/backtester/pkg/types"
	"go.uber.org/zap"
)

// Store caches provider responses per (ticker, range) in memory and as JSON
// files under a data directory, so repeated backtests over the same window
// do not hit the upstream API. It implements Provider itself.
type Store struct {
	mu       sync.Mutex
	logger   *zap.Logger
	dataDir  string
	upstream Provider
	cache    map[string][]types.PriceBar
}

// NewStore creates a caching store in front of the given provider.
func NewStore(logger *zap.Logger, dataDir string, upstream Provider) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &Store{
		logger:   logger,
		dataDir:  dataDir,
		upstream: upstream,
		cache:    make(map[string][]types.PriceBar),
	}, nil
}

// DailyCloses returns the cached series for the exact (ticker, range) key,
// fetching and caching it on a miss.
func (s *Store) DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]types.PriceBar, error) {
	key := cacheKey(ticker, start, end)

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	if bars, err := s.readFile(key); err == nil {
		s.mu.Lock()
		s.cache[key] = bars
		s.mu.Unlock()
		return bars, nil
	}

	bars, err := s.upstream.DailyCloses(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if err := s.writeFile(key, bars); err != nil {
		s.logger.Warn("failed to cache price series", zap.String("key", key), zap.Error(err))
	}

	s.mu.Lock()
	s.cache[key] = bars
	s.mu.Unlock()
	return bars, nil
}

func (s *Store) readFile(key string) ([]types.PriceBar, error) {
	raw, err := os.ReadFile(filepath.Join(s.dataDir, key+".json"))
	if err != nil {
		return nil, err
	}
	var bars []types.PriceBar
	if err := json.Unmarshal(raw, &bars); err != nil {
		return nil, fmt.Errorf("parsing cached series %s: %w", key, err)
	}
	return bars, nil
}

func (s *Store) writeFile(key string, bars []types.PriceBar) error {
	raw, err := json.Marshal(bars)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dataDir, key+".json"), raw, 0o644)
}

func cacheKey(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s",
		strings.ToUpper(ticker),
		start.Format("20060102"),
		end.Format("20060102"),
	)
}
