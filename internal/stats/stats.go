// Package stats provides the small set of numeric primitives the scoring
// and risk engines share. Callers are responsible for input validation;
// degenerate input yields the mathematical result (0, NaN) rather than an
// error so the typed failures stay in the domain packages.
package stats

import "math"

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

// SMA returns the mean of the trailing window elements of xs. When xs is
// shorter than the window the whole slice is averaged.
func SMA(xs []float64, window int) float64 {
	return Mean(Tail(xs, window))
}

// Tail returns the trailing n elements of xs, or xs itself when shorter.
func Tail(xs []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

// Diff returns the consecutive differences xs[i+1]-xs[i].
func Diff(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// Pearson returns the Pearson correlation coefficient of two equal-length
// series. A zero-variance series yields NaN; callers guard for it.
func Pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return math.NaN()
	}
	meanA := Mean(a)
	meanB := Mean(b)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	return cov / math.Sqrt(varA*varB)
}
