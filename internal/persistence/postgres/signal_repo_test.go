package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrow/signalrun/internal/signal"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func sampleSignal() *signal.TradeSignal {
	return &signal.TradeSignal{
		ID:           "8f14e45f-ea3e-4f6a-b5a0-1c2d3e4f5a6b",
		Symbol:       "BTC",
		Action:       signal.ActionBuy,
		Price:        100,
		Confidence:   0.87,
		TargetPrice:  110,
		StopLoss:     95,
		RiskReward:   2.0,
		PositionSize: 0.36,
		Analysis: signal.Analysis{
			ModelConfidence: 0.9,
			TechnicalScore:  0.8,
			RiskScore:       90,
			RiskLevel:       "low",
			Volatility:      0.05,
		},
		GeneratedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSignalInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSignalRepo(db, time.Second)

	sig := sampleSignal()
	analysisJSON, err := json.Marshal(sig.Analysis)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO trade_signals").
		WithArgs(sig.ID, sig.Symbol, "BUY", sig.Price, sig.Confidence,
			sig.TargetPrice, sig.StopLoss, sig.RiskReward, sig.PositionSize,
			analysisJSON, sig.GeneratedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), sig))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignalInsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSignalRepo(db, time.Second)

	mock.ExpectExec("INSERT INTO trade_signals").
		WillReturnError(assert.AnError)

	err := repo.Insert(context.Background(), sampleSignal())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSignalLatest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSignalRepo(db, time.Second)

	sig := sampleSignal()
	analysisJSON, err := json.Marshal(sig.Analysis)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{
		"id", "symbol", "action", "price", "confidence", "target_price", "stop_loss",
		"risk_reward", "position_size", "analysis", "generated_at",
	}).AddRow(sig.ID, sig.Symbol, string(sig.Action), sig.Price, sig.Confidence,
		sig.TargetPrice, sig.StopLoss, sig.RiskReward, sig.PositionSize,
		analysisJSON, sig.GeneratedAt)

	mock.ExpectQuery("SELECT (.+) FROM trade_signals").
		WithArgs("BTC", 10).
		WillReturnRows(rows)

	signals, err := repo.Latest(context.Background(), "BTC", 10)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, sig.ID, signals[0].ID)
	assert.Equal(t, signal.ActionBuy, signals[0].Action)
	assert.Equal(t, 100.0, signals[0].Price)
	assert.Equal(t, 90.0, signals[0].Analysis.RiskScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignalLatestEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSignalRepo(db, time.Second)

	mock.ExpectQuery("SELECT (.+) FROM trade_signals").
		WithArgs("DOGE", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	signals, err := repo.Latest(context.Background(), "DOGE", 20)
	require.NoError(t, err)
	assert.Empty(t, signals)
}
