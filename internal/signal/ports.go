package signal

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantrow/signalrun/internal/risk"
)

// ErrInvalidPrediction is returned when the external model's output is
// structurally unusable.
var ErrInvalidPrediction = errors.New("invalid prediction")

// Prediction is the external model's output over its horizon: one price,
// confidence and volatility estimate per step.
type Prediction struct {
	Prices       []float64 `json:"predicted_prices"`
	Confidences  []float64 `json:"confidences"`
	Volatilities []float64 `json:"volatilities"`
}

// Validate checks the prediction's structural invariants: aligned
// non-empty sequences, confidences in [0,1], volatilities non-negative.
func (p *Prediction) Validate() error {
	h := len(p.Prices)
	if h == 0 {
		return fmt.Errorf("%w: empty horizon", ErrInvalidPrediction)
	}
	if len(p.Confidences) != h || len(p.Volatilities) != h {
		return fmt.Errorf("%w: horizon mismatch %d/%d/%d",
			ErrInvalidPrediction, h, len(p.Confidences), len(p.Volatilities))
	}
	for i := 0; i < h; i++ {
		if p.Confidences[i] < 0 || p.Confidences[i] > 1 {
			return fmt.Errorf("%w: confidence[%d]=%.4f outside [0,1]", ErrInvalidPrediction, i, p.Confidences[i])
		}
		if p.Volatilities[i] < 0 {
			return fmt.Errorf("%w: volatility[%d]=%.4f negative", ErrInvalidPrediction, i, p.Volatilities[i])
		}
	}
	return nil
}

// Predictor is the external model collaborator.
type Predictor interface {
	Forward(ctx context.Context, prices []float64) (*Prediction, error)
}

// SentimentProvider supplies per-source sentiment scores for a symbol.
type SentimentProvider interface {
	Analyze(ctx context.Context, symbol string) (risk.SentimentData, error)
}

// PortfolioProvider supplies the current held positions and their return
// series to the risk aggregator.
type PortfolioProvider interface {
	Positions(ctx context.Context) (map[string]risk.Position, error)
	Returns(ctx context.Context) (map[string][]float64, error)
}

// Notifier delivers finished signals to the approval workflow. The return
// reports delivery, not approval.
type Notifier interface {
	SendSignal(ctx context.Context, sig *TradeSignal) bool
}

// LogNotifier delivers signals to the structured log. It stands in for
// a chat or webhook channel in offline and development runs.
type LogNotifier struct {
	Log zerolog.Logger
}

// SendSignal logs the signal; delivery to the log always succeeds.
func (n LogNotifier) SendSignal(_ context.Context, sig *TradeSignal) bool {
	n.Log.Info().
		Str("signal_id", sig.ID).
		Str("symbol", sig.Symbol).
		Str("action", string(sig.Action)).
		Float64("confidence", sig.Confidence).
		Float64("target_price", sig.TargetPrice).
		Float64("stop_loss", sig.StopLoss).
		Msg("signal ready for approval")
	return true
}

// FanOutNotifier delivers a signal to every wrapped notifier. Delivery
// succeeds only when every channel succeeds.
type FanOutNotifier []Notifier

// SendSignal fans the signal out to all channels.
func (n FanOutNotifier) SendSignal(ctx context.Context, sig *TradeSignal) bool {
	delivered := true
	for _, notifier := range n {
		if !notifier.SendSignal(ctx, sig) {
			delivered = false
		}
	}
	return delivered
}

// EmptyPortfolio is the default PortfolioProvider: no held positions.
type EmptyPortfolio struct{}

// Positions returns an empty position map.
func (EmptyPortfolio) Positions(context.Context) (map[string]risk.Position, error) {
	return map[string]risk.Position{}, nil
}

// Returns returns an empty return-series map.
func (EmptyPortfolio) Returns(context.Context) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}

// NeutralSentiment is the default SentimentProvider: midpoint scores for
// every symbol.
type NeutralSentiment struct{}

// Analyze returns neutral sentiment readings.
func (NeutralSentiment) Analyze(context.Context, string) (risk.SentimentData, error) {
	return risk.NeutralSentiment(), nil
}

// StaticPortfolio is a fixed-position PortfolioProvider for tests and
// offline runs.
type StaticPortfolio struct {
	Held        map[string]risk.Position
	ReturnsData map[string][]float64
}

// Positions returns the fixed position map.
func (p StaticPortfolio) Positions(context.Context) (map[string]risk.Position, error) {
	if p.Held == nil {
		return map[string]risk.Position{}, nil
	}
	return p.Held, nil
}

// Returns returns the fixed return-series map.
func (p StaticPortfolio) Returns(context.Context) (map[string][]float64, error) {
	if p.ReturnsData == nil {
		return map[string][]float64{}, nil
	}
	return p.ReturnsData, nil
}
