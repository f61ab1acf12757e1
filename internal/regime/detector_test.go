package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationTable(t *testing.T) {
	tests := []struct {
		name           string
		cond           condition
		wantRegime     Regime
		wantMultiplier float64
	}{
		{"volatile and heavy volume", condition{true, true}, HighRisk, 0.5},
		{"volatile only", condition{true, false}, Volatile, 0.7},
		{"heavy volume only", condition{false, true}, HighVolume, 0.8},
		{"calm", condition{false, false}, Normal, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := classifications[tt.cond]
			assert.Equal(t, tt.wantRegime, det.Regime)
			assert.Equal(t, tt.wantMultiplier, det.RiskMultiplier)
		})
	}
}

func TestDetect(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	t.Run("volume burst classifies high volume", func(t *testing.T) {
		prices := []float64{100, 101, 99, 100, 102}
		volumes := []float64{100, 100, 100, 100, 300}

		det, err := detector.Detect(prices, volumes)
		require.NoError(t, err)
		assert.Equal(t, HighVolume, det.Regime)
		assert.Equal(t, 0.8, det.RiskMultiplier)
		assert.InDelta(t, 300.0/140.0, det.VolumeRatio, 1e-9)
	})

	t.Run("steady volume classifies normal", func(t *testing.T) {
		prices := []float64{100, 101, 99, 100, 102}
		volumes := []float64{100, 100, 100, 100, 110}

		det, err := detector.Detect(prices, volumes)
		require.NoError(t, err)
		assert.Equal(t, Normal, det.Regime)
		assert.Equal(t, 1.0, det.RiskMultiplier)
	})

	t.Run("volatility is reported even when the vote cannot trip", func(t *testing.T) {
		prices := []float64{50, 150, 50, 150}
		volumes := []float64{100, 100, 100, 100}

		det, err := detector.Detect(prices, volumes)
		require.NoError(t, err)
		assert.Equal(t, 50.0, det.Volatility)
		assert.Equal(t, Normal, det.Regime)
	})

	t.Run("empty series fail", func(t *testing.T) {
		_, err := detector.Detect(nil, []float64{1})
		assert.ErrorIs(t, err, ErrNoData)

		_, err = detector.Detect([]float64{1}, nil)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("zero average volume fails", func(t *testing.T) {
		_, err := detector.Detect([]float64{1, 2}, []float64{0, 0})
		assert.ErrorIs(t, err, ErrZeroVolume)
	})
}
