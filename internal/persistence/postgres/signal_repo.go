// Package postgres implements the persistence ports on PostgreSQL via
// sqlx. Expected schema:
//
//	CREATE TABLE trade_signals (
//	    id            UUID PRIMARY KEY,
//	    symbol        TEXT NOT NULL,
//	    action        TEXT NOT NULL,
//	    price         DOUBLE PRECISION NOT NULL,
//	    confidence    DOUBLE PRECISION NOT NULL,
//	    target_price  DOUBLE PRECISION NOT NULL,
//	    stop_loss     DOUBLE PRECISION NOT NULL,
//	    risk_reward   DOUBLE PRECISION NOT NULL,
//	    position_size DOUBLE PRECISION NOT NULL,
//	    analysis      JSONB NOT NULL,
//	    generated_at  TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE backtest_runs (
//	    run_id          UUID PRIMARY KEY,
//	    initial_capital DOUBLE PRECISION NOT NULL,
//	    stop_fraction   DOUBLE PRECISION NOT NULL,
//	    metrics         JSONB NOT NULL,
//	    trades          JSONB NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/quantrow/signalrun/internal/persistence"
	"github.com/quantrow/signalrun/internal/signal"
)

// signalRepo implements persistence.SignalRepo on PostgreSQL.
type signalRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSignalRepo creates a PostgreSQL signal repository.
func NewSignalRepo(db *sqlx.DB, timeout time.Duration) persistence.SignalRepo {
	return &signalRepo{db: db, timeout: timeout}
}

// Insert stores one generated signal.
func (r *signalRepo) Insert(ctx context.Context, sig *signal.TradeSignal) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	analysisJSON, err := json.Marshal(sig.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO trade_signals
		(id, symbol, action, price, confidence, target_price, stop_loss, risk_reward, position_size, analysis, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := r.db.ExecContext(ctx, query,
		sig.ID, sig.Symbol, string(sig.Action), sig.Price, sig.Confidence,
		sig.TargetPrice, sig.StopLoss, sig.RiskReward, sig.PositionSize,
		analysisJSON, sig.GeneratedAt); err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}
	return nil
}

// signalRow is the scan target for trade_signals.
type signalRow struct {
	ID           string    `db:"id"`
	Symbol       string    `db:"symbol"`
	Action       string    `db:"action"`
	Price        float64   `db:"price"`
	Confidence   float64   `db:"confidence"`
	TargetPrice  float64   `db:"target_price"`
	StopLoss     float64   `db:"stop_loss"`
	RiskReward   float64   `db:"risk_reward"`
	PositionSize float64   `db:"position_size"`
	Analysis     []byte    `db:"analysis"`
	GeneratedAt  time.Time `db:"generated_at"`
}

// Latest returns the most recent signals for a symbol, newest first.
func (r *signalRepo) Latest(ctx context.Context, symbol string, limit int) ([]signal.TradeSignal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, symbol, action, price, confidence, target_price, stop_loss,
		       risk_reward, position_size, analysis, generated_at
		FROM trade_signals
		WHERE symbol = $1
		ORDER BY generated_at DESC
		LIMIT $2`

	var rows []signalRow
	if err := r.db.SelectContext(ctx, &rows, query, symbol, limit); err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}

	signals := make([]signal.TradeSignal, 0, len(rows))
	for _, row := range rows {
		sig := signal.TradeSignal{
			ID:           row.ID,
			Symbol:       row.Symbol,
			Action:       signal.Action(row.Action),
			Price:        row.Price,
			Confidence:   row.Confidence,
			TargetPrice:  row.TargetPrice,
			StopLoss:     row.StopLoss,
			RiskReward:   row.RiskReward,
			PositionSize: row.PositionSize,
			GeneratedAt:  row.GeneratedAt,
		}
		if err := json.Unmarshal(row.Analysis, &sig.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis for %s: %w", row.ID, err)
		}
		signals = append(signals, sig)
	}
	return signals, nil
}
