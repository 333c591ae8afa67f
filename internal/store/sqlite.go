// Package store persists completed backtest results.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quantbench/backtester/pkg/types"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrNotFound is returned when no stored result matches the given id.
var ErrNotFound = errors.New("backtest result not found")

// ResultSummary is the listing view of a stored result.
type ResultSummary struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Ticker      string             `json:"ticker"`
	Strategy    types.StrategyKind `json:"strategy"`
	TotalReturn string             `json:"totalReturn"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ResultStore stores and retrieves completed backtest results. The engine
// has no knowledge of the storage schema; ownership of a result passes here
// after the run completes.
type ResultStore interface {
	Save(ctx context.Context, userID string, result *types.BacktestResult) error
	Get(ctx context.Context, id string) (*types.BacktestResult, error)
	List(ctx context.Context, userID string) ([]ResultSummary, error)
	Close() error
}

// Compile-time interface check.
var _ ResultStore = (*SQLiteStore)(nil)

// SQLiteStore implements ResultStore backed by a SQLite database. The full
// result is stored as a JSON document alongside a few indexed columns for
// listing.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS backtests (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	ticker       TEXT NOT NULL,
	strategy     TEXT NOT NULL,
	total_return TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	result       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_backtests_user ON backtests(user_id, created_at);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening result database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating result schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts a completed result owned by userID.
func (s *SQLiteStore) Save(ctx context.Context, userID string, result *types.BacktestResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", result.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO backtests (id, user_id, ticker, strategy, total_return, created_at, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ID,
		userID,
		result.Ticker,
		string(result.Strategy),
		result.Performance.TotalReturn.String(),
		result.CompletedAt.UTC().Format(time.RFC3339Nano),
		raw,
	)
	if err != nil {
		return fmt.Errorf("saving result %s: %w", result.ID, err)
	}
	return nil
}

// Get retrieves a single stored result by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*types.BacktestResult, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM backtests WHERE id = ?`, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading result %s: %w", id, err)
	}

	var result types.BacktestResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding result %s: %w", id, err)
	}
	return &result, nil
}

// List returns summaries of a user's stored results, newest first.
func (s *SQLiteStore) List(ctx context.Context, userID string) ([]ResultSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, ticker, strategy, total_return, created_at
		 FROM backtests WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing results for %s: %w", userID, err)
	}
	defer rows.Close()

	var summaries []ResultSummary
	for rows.Next() {
		var sum ResultSummary
		var strategy, createdAt string
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.Ticker, &strategy, &sum.TotalReturn, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		sum.Strategy = types.StrategyKind(strategy)
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			sum.CreatedAt = t
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
