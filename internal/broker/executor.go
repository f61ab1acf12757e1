package broker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantrow/signalrun/internal/signal"
)

// Executor routes actionable signals to a broker as market orders.
// It implements signal.Notifier so it can sit behind the generator's
// delivery hook; non-actionable signals are acknowledged without an
// order.
type Executor struct {
	paper *Paper
	log   zerolog.Logger
}

// NewExecutor creates an executor backed by the given paper broker.
func NewExecutor(paper *Paper, log zerolog.Logger) *Executor {
	return &Executor{paper: paper, log: log}
}

// SendSignal places a market order for BUY and SELL signals. The
// signal's last observed price becomes the paper quote so the fill
// matches the data the decision was made on.
func (e *Executor) SendSignal(ctx context.Context, sig *signal.TradeSignal) bool {
	if !sig.Actionable() {
		return true
	}

	side := SideBuy
	if sig.Action == signal.ActionSell {
		side = SideSell
	}

	e.paper.SetPrice(sig.Symbol, sig.Price)
	order, err := e.paper.PlaceOrder(ctx, sig.Symbol, side, sig.PositionSize)
	if err != nil {
		e.log.Warn().
			Err(err).
			Str("signal_id", sig.ID).
			Str("symbol", sig.Symbol).
			Msg("order placement failed")
		return false
	}

	e.log.Info().
		Str("order_id", order.ID).
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Float64("quantity", order.Quantity).
		Float64("price", order.Price).
		Msg("order placed")
	return true
}
