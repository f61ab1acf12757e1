package signal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrow/signalrun/internal/risk"
)

type stubPredictor struct {
	prediction *Prediction
	err        error
}

func (s stubPredictor) Forward(context.Context, []float64) (*Prediction, error) {
	return s.prediction, s.err
}

type recordingNotifier struct {
	delivered bool
	last      *TradeSignal
}

func (n *recordingNotifier) SendSignal(_ context.Context, sig *TradeSignal) bool {
	n.last = sig
	return n.delivered
}

func trendingHistory(n int) (prices, volumes []float64) {
	prices = make([]float64, n)
	volumes = make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
		volumes[i] = 1000
	}
	return prices, volumes
}

func buyPrediction(lastPrice float64) *Prediction {
	return &Prediction{
		Prices:       []float64{lastPrice * 1.02, lastPrice * 1.05, lastPrice * 1.10},
		Confidences:  []float64{0.8, 0.85, 0.9},
		Volatilities: []float64{0.04, 0.04, 0.05},
	}
}

func TestGenerateBuySignal(t *testing.T) {
	prices, volumes := trendingHistory(60)
	notifier := &recordingNotifier{delivered: true}

	gen, err := NewGenerator(DefaultGeneratorConfig(), Deps{
		Predictor: stubPredictor{prediction: buyPrediction(prices[len(prices)-1])},
		Notifier:  notifier,
	})
	require.NoError(t, err)

	sig, err := gen.Generate(context.Background(), "BTC", prices, volumes)
	require.NoError(t, err)

	assert.Equal(t, ActionBuy, sig.Action)
	assert.Equal(t, "BTC", sig.Symbol)
	assert.NotEmpty(t, sig.ID)
	assert.True(t, sig.Actionable())
	assert.Equal(t, prices[len(prices)-1], sig.Price)
	assert.Greater(t, sig.TargetPrice, sig.StopLoss)
	assert.Equal(t, 0.9, sig.Analysis.ModelConfidence)
	assert.Equal(t, 0.05, sig.Analysis.Volatility)
	assert.False(t, sig.GeneratedAt.IsZero())

	require.NotNil(t, notifier.last)
	assert.Equal(t, sig.ID, notifier.last.ID)
}

func TestFanOutNotifier(t *testing.T) {
	sig := &TradeSignal{ID: "sig-1", Symbol: "BTC", Action: ActionBuy}

	ok := &recordingNotifier{delivered: true}
	failed := &recordingNotifier{delivered: false}

	assert.True(t, FanOutNotifier{ok}.SendSignal(context.Background(), sig))
	assert.Equal(t, sig.ID, ok.last.ID)

	// One failed channel fails the delivery, but every channel is
	// still attempted.
	after := &recordingNotifier{delivered: true}
	assert.False(t, FanOutNotifier{failed, after}.SendSignal(context.Background(), sig))
	assert.NotNil(t, failed.last)
	assert.NotNil(t, after.last)
}

func TestGenerateHoldsHeldSymbols(t *testing.T) {
	prices, volumes := trendingHistory(60)
	last := prices[len(prices)-1]

	// Confidence below threshold forces WAIT in the combiner.
	weak := &Prediction{
		Prices:       []float64{last * 1.10},
		Confidences:  []float64{0.5},
		Volatilities: []float64{0.05},
	}

	portfolio := StaticPortfolio{
		Held: map[string]risk.Position{
			"BTC": {Symbol: "BTC", Value: 5000},
		},
	}

	gen, err := NewGenerator(DefaultGeneratorConfig(), Deps{
		Predictor: stubPredictor{prediction: weak},
		Portfolio: portfolio,
	})
	require.NoError(t, err)

	held, err := gen.Generate(context.Background(), "BTC", prices, volumes)
	require.NoError(t, err)
	assert.Equal(t, ActionHold, held.Action)

	notHeld, err := gen.Generate(context.Background(), "ETH", prices, volumes)
	require.NoError(t, err)
	assert.Equal(t, ActionWait, notHeld.Action)
}

func TestGenerateErrors(t *testing.T) {
	prices, volumes := trendingHistory(60)

	t.Run("predictor is required", func(t *testing.T) {
		_, err := NewGenerator(DefaultGeneratorConfig(), Deps{})
		assert.Error(t, err)
	})

	t.Run("series mismatch", func(t *testing.T) {
		gen, err := NewGenerator(DefaultGeneratorConfig(), Deps{
			Predictor: stubPredictor{prediction: buyPrediction(100)},
		})
		require.NoError(t, err)

		_, err = gen.Generate(context.Background(), "BTC", prices, volumes[:30])
		assert.ErrorIs(t, err, risk.ErrInvalidInput)
	})

	t.Run("predictor failure propagates", func(t *testing.T) {
		boom := errors.New("model offline")
		gen, err := NewGenerator(DefaultGeneratorConfig(), Deps{
			Predictor: stubPredictor{err: boom},
		})
		require.NoError(t, err)

		_, err = gen.Generate(context.Background(), "BTC", prices, volumes)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("malformed prediction rejected", func(t *testing.T) {
		gen, err := NewGenerator(DefaultGeneratorConfig(), Deps{
			Predictor: stubPredictor{prediction: &Prediction{
				Prices:       []float64{100, 101},
				Confidences:  []float64{0.9},
				Volatilities: []float64{0.05, 0.05},
			}},
		})
		require.NoError(t, err)

		_, err = gen.Generate(context.Background(), "BTC", prices, volumes)
		assert.ErrorIs(t, err, ErrInvalidPrediction)
	})
}

func TestPredictionValidate(t *testing.T) {
	valid := buyPrediction(100)
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		pred Prediction
	}{
		{"empty horizon", Prediction{}},
		{"confidence above one", Prediction{
			Prices: []float64{1}, Confidences: []float64{1.5}, Volatilities: []float64{0.1},
		}},
		{"negative volatility", Prediction{
			Prices: []float64{1}, Confidences: []float64{0.5}, Volatilities: []float64{-0.1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.pred.Validate(), ErrInvalidPrediction)
		})
	}
}
