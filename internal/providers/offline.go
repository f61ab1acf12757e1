package providers

import (
	"context"
	"fmt"
	"math"

	"github.com/quantrow/signalrun/internal/signal"
	"github.com/quantrow/signalrun/internal/stats"
)

// Offline forecast confidence: full at the first step, decaying with
// distance but never below the default action gate, so a clean drift
// signal stays actionable at the horizon the generator reads.
const (
	offlineBaseConfidence  = 0.9
	offlineConfidenceDecay = 0.05
	offlineMinConfidence   = 0.7
)

// OfflinePredictor produces forecasts without a model service by
// extrapolating the recent drift of the price series. It exists so the
// CLI can score symbols and run backtests with no network dependency.
type OfflinePredictor struct {
	Horizon int // forecast steps, default 3
}

// Forward extrapolates the mean per-step change of the window across
// the horizon. Volatility is the standard deviation of the window's
// per-step returns, a fraction of price as the combiner expects.
func (p OfflinePredictor) Forward(_ context.Context, prices []float64) (*signal.Prediction, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 prices, got %d", signal.ErrInvalidPrediction, len(prices))
	}
	horizon := p.Horizon
	if horizon <= 0 {
		horizon = 3
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			return nil, fmt.Errorf("%w: non-positive price %.4f", signal.ErrInvalidPrediction, prices[i-1])
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}

	drift := stats.Mean(stats.Diff(prices))
	vol := stats.StdDev(returns)
	last := prices[len(prices)-1]

	pred := &signal.Prediction{
		Prices:       make([]float64, horizon),
		Confidences:  make([]float64, horizon),
		Volatilities: make([]float64, horizon),
	}
	for i := 0; i < horizon; i++ {
		pred.Prices[i] = last + drift*float64(i+1)
		pred.Confidences[i] = math.Max(offlineMinConfidence, offlineBaseConfidence-offlineConfidenceDecay*float64(i))
		pred.Volatilities[i] = vol
	}
	return pred, nil
}
