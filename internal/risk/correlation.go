package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/quantrow/signalrun/internal/stats"
)

// DefaultCorrelationThreshold flags pairs whose absolute correlation
// exceeds 70%.
const DefaultCorrelationThreshold = 0.7

// CorrelationAnalyzer computes pairwise return correlations across held
// assets and flags concentrated pairs.
type CorrelationAnalyzer struct {
	threshold float64
}

// NewCorrelationAnalyzer creates an analyzer with the given flagging
// threshold.
func NewCorrelationAnalyzer(threshold float64) *CorrelationAnalyzer {
	return &CorrelationAnalyzer{threshold: threshold}
}

// CorrelatedPair is a flagged asset pair.
type CorrelatedPair struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	Correlation float64 `json:"correlation"`
}

// CorrelationReport holds the full pairwise correlation matrix and the
// pairs above threshold.
type CorrelationReport struct {
	Correlations map[string]float64 `json:"correlations"` // "A-B" keyed, A < B
	Flagged      []CorrelatedPair   `json:"flagged"`
	Threshold    float64            `json:"threshold"`
}

// Analyze computes the Pearson correlation of every unordered asset pair.
// Fewer than two assets yields an empty report: there are no pairs to
// evaluate. Each evaluated pair needs at least two aligned samples.
func (a *CorrelationAnalyzer) Analyze(returns map[string][]float64) (*CorrelationReport, error) {
	report := &CorrelationReport{
		Correlations: make(map[string]float64),
		Flagged:      make([]CorrelatedPair, 0),
		Threshold:    a.threshold,
	}

	assets := make([]string, 0, len(returns))
	for asset := range returns {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			first, second := assets[i], assets[j]
			corr, err := pairCorrelation(first, second, returns[first], returns[second])
			if err != nil {
				return nil, err
			}

			report.Correlations[first+"-"+second] = corr
			if math.Abs(corr) > a.threshold {
				report.Flagged = append(report.Flagged, CorrelatedPair{A: first, B: second, Correlation: corr})
			}
		}
	}

	return report, nil
}

func pairCorrelation(nameA, nameB string, a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %s has %d returns, %s has %d", ErrInvalidInput, nameA, len(a), nameB, len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("%w: pair %s-%s has %d return samples, need 2", ErrInsufficientData, nameA, nameB, len(a))
	}
	if stats.StdDev(a) == 0 || stats.StdDev(b) == 0 {
		return 0, fmt.Errorf("%w: pair %s-%s", ErrZeroVariance, nameA, nameB)
	}
	return stats.Pearson(a, b), nil
}
