// Package persistence defines the storage ports for generated signals
// and backtest runs.
package persistence

import (
	"context"

	"github.com/quantrow/signalrun/internal/backtest"
	"github.com/quantrow/signalrun/internal/signal"
)

// SignalRepo stores and retrieves generated trade signals.
type SignalRepo interface {
	Insert(ctx context.Context, sig *signal.TradeSignal) error
	Latest(ctx context.Context, symbol string, limit int) ([]signal.TradeSignal, error)
}

// BacktestRepo stores completed backtest runs.
type BacktestRepo interface {
	InsertRun(ctx context.Context, result *backtest.Result, params backtest.Params) error
}
