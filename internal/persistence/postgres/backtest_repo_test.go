package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrow/signalrun/internal/backtest"
)

func TestBacktestInsertRun(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBacktestRepo(db, time.Second)

	result := &backtest.Result{
		RunID: "run-1",
		Trades: []backtest.TradeRecord{
			{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Capital: 10040},
		},
		Metrics: backtest.Metrics{FinalCapital: 10040, TotalReturn: 0.4},
	}
	params := backtest.DefaultParams()

	mock.ExpectExec("INSERT INTO backtest_runs").
		WithArgs("run-1", params.InitialCapital, params.StopFraction,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertRun(context.Background(), result, params))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBacktestInsertRunFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBacktestRepo(db, time.Second)

	mock.ExpectExec("INSERT INTO backtest_runs").
		WillReturnError(assert.AnError)

	err := repo.InsertRun(context.Background(), &backtest.Result{RunID: "run-2"}, backtest.DefaultParams())
	assert.ErrorIs(t, err, assert.AnError)
}
