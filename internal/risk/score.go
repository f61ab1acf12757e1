// Package risk fuses regime, sentiment, concentration and correlation
// readings into one 0-100 risk score (lower means riskier), plus the
// supporting analyzers and the position sizer.
package risk

import (
	"fmt"
	"math"

	"github.com/quantrow/signalrun/internal/regime"
)

// Level is the derived risk level. Lower scores mean higher risk.
type Level string

const (
	LevelHigh   Level = "high"   // score < 40
	LevelMedium Level = "medium" // score < 70
	LevelLow    Level = "low"
)

// levelThresholds maps score cutoffs to levels, scanned in order.
var levelThresholds = []struct {
	Below float64
	Level Level
}{
	{40, LevelHigh},
	{70, LevelMedium},
	{math.Inf(1), LevelLow},
}

// LevelFor derives the risk level from a 0-100 score.
func LevelFor(score float64) Level {
	for _, t := range levelThresholds {
		if score < t.Below {
			return t.Level
		}
	}
	return LevelLow
}

// regimeScores maps each market regime to its component score.
var regimeScores = map[regime.Regime]float64{
	regime.HighRisk:   20,
	regime.Volatile:   40,
	regime.HighVolume: 60,
	regime.Normal:     80,
}

// unknownRegimeScore is the neutral fallback for unrecognized regimes.
const unknownRegimeScore = 50

// RegimeScore returns the component score for a regime, defaulting to the
// neutral midpoint for tags outside the known set.
func RegimeScore(r regime.Regime) float64 {
	if score, ok := regimeScores[r]; ok {
		return score
	}
	return unknownRegimeScore
}

// Per-position and per-pair penalties for the concentration and
// correlation components.
const (
	concentrationPenalty = 20.0
	correlationPenalty   = 15.0
)

// Sentiment multiplier bands for AdjustBySentiment.
const (
	bullishSentiment      = 0.8
	bearishSentiment      = 0.2
	bullishRiskMultiplier = 1.2
	bearishRiskMultiplier = 0.6
)

// Weights is the fixed fusion weighting of the four risk components.
// The weights must sum to 1.
type Weights struct {
	MarketRegime  float64 `yaml:"market_regime"` // Default: 0.3
	Sentiment     float64 `yaml:"sentiment"`     // Default: 0.2
	Concentration float64 `yaml:"concentration"` // Default: 0.25
	Correlation   float64 `yaml:"correlation"`   // Default: 0.25
}

// DefaultWeights returns the production component weighting.
func DefaultWeights() Weights {
	return Weights{MarketRegime: 0.3, Sentiment: 0.2, Concentration: 0.25, Correlation: 0.25}
}

// Sum returns the total of the four weights.
func (w Weights) Sum() float64 {
	return w.MarketRegime + w.Sentiment + w.Concentration + w.Correlation
}

// SentimentWeights blends the three sentiment sources.
type SentimentWeights struct {
	News      float64 `yaml:"news"`      // Default: 0.3
	Social    float64 `yaml:"social"`    // Default: 0.3
	Technical float64 `yaml:"technical"` // Default: 0.4
}

// DefaultSentimentWeights returns the production sentiment weighting.
func DefaultSentimentWeights() SentimentWeights {
	return SentimentWeights{News: 0.3, Social: 0.3, Technical: 0.4}
}

// Sum returns the total of the three sentiment weights.
func (w SentimentWeights) Sum() float64 {
	return w.News + w.Social + w.Technical
}

// MarketData is the raw series pair consumed by the regime leg.
type MarketData struct {
	Prices  []float64 `json:"prices"`
	Volumes []float64 `json:"volumes"`
}

// SentimentData carries per-source sentiment scores in [0,1].
type SentimentData struct {
	News      float64 `json:"news"`
	Social    float64 `json:"social"`
	Technical float64 `json:"technical"`
}

// NeutralSentiment is the midpoint reading used when no sentiment source
// is wired in.
func NeutralSentiment() SentimentData {
	return SentimentData{News: 0.5, Social: 0.5, Technical: 0.5}
}

// PortfolioData is the held-position state consumed by the concentration
// and correlation legs.
type PortfolioData struct {
	Positions map[string]Position  `json:"positions"`
	Returns   map[string][]float64 `json:"returns"`
}

// ScoreResult is the fused risk score with its component breakdown.
type ScoreResult struct {
	Score      float64            `json:"score"` // 0-100, lower is riskier
	Level      Level              `json:"level"`
	Components map[string]float64 `json:"components"`
}

// Config holds the aggregator's construction-time parameters.
type Config struct {
	Weights              Weights          `yaml:"weights"`
	SentimentWeights     SentimentWeights `yaml:"sentiment_weights"`
	CorrelationThreshold float64          `yaml:"correlation_threshold"` // Default: 0.7
	Regime               regime.Config    `yaml:"regime"`
}

// DefaultConfig returns the production aggregator configuration.
func DefaultConfig() Config {
	return Config{
		Weights:              DefaultWeights(),
		SentimentWeights:     DefaultSentimentWeights(),
		CorrelationThreshold: DefaultCorrelationThreshold,
		Regime:               regime.DefaultConfig(),
	}
}

// weightTolerance is the permitted deviation of a weight set from 1.0.
const weightTolerance = 1e-6

// Aggregator fuses the four risk components into one score. Immutable
// after construction; independent calls may run concurrently.
type Aggregator struct {
	cfg          Config
	regimes      *regime.Detector
	correlations *CorrelationAnalyzer
}

// NewAggregator validates the configuration and builds the aggregator.
func NewAggregator(cfg Config) (*Aggregator, error) {
	if diff := math.Abs(cfg.Weights.Sum() - 1.0); diff > weightTolerance {
		return nil, fmt.Errorf("risk weights sum to %.6f, want 1.0", cfg.Weights.Sum())
	}
	if diff := math.Abs(cfg.SentimentWeights.Sum() - 1.0); diff > weightTolerance {
		return nil, fmt.Errorf("sentiment weights sum to %.6f, want 1.0", cfg.SentimentWeights.Sum())
	}
	if cfg.CorrelationThreshold <= 0 || cfg.CorrelationThreshold > 1 {
		return nil, fmt.Errorf("correlation threshold %.2f outside (0,1]", cfg.CorrelationThreshold)
	}
	return &Aggregator{
		cfg:          cfg,
		regimes:      regime.NewDetector(cfg.Regime),
		correlations: NewCorrelationAnalyzer(cfg.CorrelationThreshold),
	}, nil
}

// Score fuses regime, sentiment, concentration and correlation into one
// 0-100 risk score plus a derived level.
func (a *Aggregator) Score(market MarketData, sentiment SentimentData, portfolio PortfolioData) (*ScoreResult, error) {
	detection, err := a.regimes.Detect(market.Prices, market.Volumes)
	if err != nil {
		return nil, fmt.Errorf("regime detection: %w", err)
	}

	heatMap, err := BuildHeatMap(portfolio.Positions)
	if err != nil {
		return nil, fmt.Errorf("portfolio heat map: %w", err)
	}

	correlations, err := a.correlations.Analyze(portfolio.Returns)
	if err != nil {
		return nil, fmt.Errorf("correlation risk: %w", err)
	}

	components := map[string]float64{
		"market_regime": RegimeScore(detection.Regime),
		"sentiment":     a.WeightedSentiment(sentiment) * 100,
		"concentration": math.Max(0, 100-concentrationPenalty*float64(len(heatMap.Buckets[BucketHighRisk]))),
		"correlation":   math.Max(0, 100-correlationPenalty*float64(len(correlations.Flagged))),
	}

	score := components["market_regime"]*a.cfg.Weights.MarketRegime +
		components["sentiment"]*a.cfg.Weights.Sentiment +
		components["concentration"]*a.cfg.Weights.Concentration +
		components["correlation"]*a.cfg.Weights.Correlation

	return &ScoreResult{
		Score:      score,
		Level:      LevelFor(score),
		Components: components,
	}, nil
}

// WeightedSentiment blends the three sentiment sources into one [0,1]
// reading.
func (a *Aggregator) WeightedSentiment(s SentimentData) float64 {
	w := a.cfg.SentimentWeights
	return s.News*w.News + s.Social*w.Social + s.Technical*w.Technical
}

// Adjustment is the result of scaling a base risk by sentiment.
type Adjustment struct {
	OriginalRisk   float64 `json:"original_risk"`
	AdjustedRisk   float64 `json:"adjusted_risk"`
	SentimentScore float64 `json:"sentiment_score"`
	RiskMultiplier float64 `json:"risk_multiplier"`
}

// AdjustBySentiment scales a base risk budget up in strongly bullish
// conditions and down in strongly bearish ones.
func (a *Aggregator) AdjustBySentiment(baseRisk float64, sentiment SentimentData) Adjustment {
	weighted := a.WeightedSentiment(sentiment)

	multiplier := 1.0
	switch {
	case weighted > bullishSentiment:
		multiplier = bullishRiskMultiplier
	case weighted < bearishSentiment:
		multiplier = bearishRiskMultiplier
	}

	return Adjustment{
		OriginalRisk:   baseRisk,
		AdjustedRisk:   baseRisk * multiplier,
		SentimentScore: weighted,
		RiskMultiplier: multiplier,
	}
}
