package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quantrow/signalrun/internal/backtest"
	"github.com/quantrow/signalrun/internal/persistence"
)

// backtestRepo implements persistence.BacktestRepo on PostgreSQL.
type backtestRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewBacktestRepo creates a PostgreSQL backtest repository.
func NewBacktestRepo(db *sqlx.DB, timeout time.Duration) persistence.BacktestRepo {
	return &backtestRepo{db: db, timeout: timeout}
}

// InsertRun stores a completed backtest run with its parameters,
// metrics, and trade log.
func (r *backtestRepo) InsertRun(ctx context.Context, result *backtest.Result, params backtest.Params) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	metricsJSON, err := json.Marshal(result.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	tradesJSON, err := json.Marshal(result.Trades)
	if err != nil {
		return fmt.Errorf("failed to marshal trades: %w", err)
	}

	query := `
		INSERT INTO backtest_runs
		(run_id, initial_capital, stop_fraction, metrics, trades, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		result.RunID, params.InitialCapital, params.StopFraction,
		metricsJSON, tradesJSON, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to insert backtest run: %w", err)
	}
	return nil
}
