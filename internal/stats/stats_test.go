package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, -1.5, Mean([]float64{-1, -2}))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5}))
	// Population std of {2,4,4,4,5,5,7,9} is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestSMA(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6}

	assert.Equal(t, 5.0, SMA(xs, 3))
	// Window longer than the series averages everything.
	assert.Equal(t, 3.5, SMA(xs, 100))
}

func TestTail(t *testing.T) {
	xs := []float64{1, 2, 3}

	assert.Equal(t, []float64{2, 3}, Tail(xs, 2))
	assert.Equal(t, xs, Tail(xs, 5))
	assert.Nil(t, Tail(xs, 0))
}

func TestDiff(t *testing.T) {
	assert.Nil(t, Diff([]float64{42}))
	assert.Equal(t, []float64{1, -3, 10}, Diff([]float64{2, 3, 0, 10}))
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{2, 4, 6}, 1.0},
		{"perfect negative", []float64{1, 2, 3}, []float64{6, 4, 2}, -1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Pearson(tt.a, tt.b), 1e-12)
		})
	}

	t.Run("zero variance yields NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})))
	})

	t.Run("length mismatch yields NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{1, 2})))
	})
}
