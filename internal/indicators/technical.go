// Package indicators computes the technical score that feeds the signal
// combiner: RSI posture, volume burst detection and SMA trend alignment,
// fused into a single 0-1 composite.
package indicators

import (
	"errors"
	"fmt"

	"github.com/quantrow/signalrun/internal/stats"
)

// ErrInsufficientHistory is returned when a series is too short for the
// configured lookback windows.
var ErrInsufficientHistory = errors.New("insufficient history")

// Composite weighting of the three sub-scores.
const (
	rsiWeight    = 0.3
	volumeWeight = 0.3
	trendWeight  = 0.4
)

// RSI posture thresholds: oversold is bullish, overbought is bearish.
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// Config holds the lookback windows for the indicator engine.
type Config struct {
	RSIPeriod        int     `yaml:"rsi_period"`         // Default: 14
	VolumeWindow     int     `yaml:"volume_window"`      // Default: 20
	ShortSMA         int     `yaml:"short_sma"`          // Default: 20
	LongSMA          int     `yaml:"long_sma"`           // Default: 50
	VolumeBurstRatio float64 `yaml:"volume_burst_ratio"` // Default: 1.5
}

// DefaultConfig returns the standard lookback configuration.
func DefaultConfig() Config {
	return Config{
		RSIPeriod:        14,
		VolumeWindow:     20,
		ShortSMA:         20,
		LongSMA:          50,
		VolumeBurstRatio: 1.5,
	}
}

// Engine computes technical scores. It is stateless beyond its
// configuration and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an indicator engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Score is the technical score breakdown for one series pair.
type Score struct {
	RSI         float64 `json:"rsi"`
	RSIScore    float64 `json:"rsi_score"`
	VolumeScore float64 `json:"volume_score"`
	TrendScore  float64 `json:"trend_score"`
	Composite   float64 `json:"composite"` // 0.0-1.0
}

// RSI computes the Relative Strength Index over the configured period
// using simple averages of the trailing gains and losses. When no losses
// occurred in the window the index saturates at 100.
func (e *Engine) RSI(prices []float64) (float64, error) {
	period := e.cfg.RSIPeriod
	if len(prices) < period+1 {
		return 0, fmt.Errorf("%w: rsi needs %d prices, got %d", ErrInsufficientHistory, period+1, len(prices))
	}

	deltas := stats.Diff(prices)
	gains := make([]float64, len(deltas))
	losses := make([]float64, len(deltas))
	for i, d := range deltas {
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	avgGain := stats.Mean(stats.Tail(gains, period))
	avgLoss := stats.Mean(stats.Tail(losses, period))
	if avgLoss == 0 {
		return 100.0, nil
	}

	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

// Score computes the composite technical score for the given aligned
// price and volume series.
func (e *Engine) Score(prices, volumes []float64) (*Score, error) {
	if len(prices) < e.cfg.LongSMA {
		return nil, fmt.Errorf("%w: trend needs %d prices, got %d", ErrInsufficientHistory, e.cfg.LongSMA, len(prices))
	}
	if len(volumes) < e.cfg.VolumeWindow {
		return nil, fmt.Errorf("%w: volume needs %d samples, got %d", ErrInsufficientHistory, e.cfg.VolumeWindow, len(volumes))
	}

	rsi, err := e.RSI(prices)
	if err != nil {
		return nil, err
	}

	s := &Score{
		RSI:         rsi,
		RSIScore:    rsiScore(rsi),
		VolumeScore: e.volumeScore(volumes),
		TrendScore:  e.trendScore(prices),
	}
	s.Composite = rsiWeight*s.RSIScore + volumeWeight*s.VolumeScore + trendWeight*s.TrendScore
	return s, nil
}

// rsiScore maps RSI posture to a bullishness score: oversold is a buy
// signal, overbought a sell signal, anything between is neutral.
func rsiScore(rsi float64) float64 {
	switch {
	case rsi < rsiOversold:
		return 1.0
	case rsi > rsiOverbought:
		return 0.0
	default:
		return 0.5
	}
}

// volumeScore flags a burst when the latest volume exceeds the trailing
// average by the configured ratio. There is no downside branch: thin
// volume reads as neutral, not bearish.
func (e *Engine) volumeScore(volumes []float64) float64 {
	avg := stats.SMA(volumes, e.cfg.VolumeWindow)
	if volumes[len(volumes)-1] > avg*e.cfg.VolumeBurstRatio {
		return 1.0
	}
	return 0.5
}

// trendScore checks SMA alignment: price above both moving averages with
// the short above the long is an uptrend, the mirror image a downtrend,
// every other ordering is sideways.
func (e *Engine) trendScore(prices []float64) float64 {
	price := prices[len(prices)-1]
	smaShort := stats.SMA(prices, e.cfg.ShortSMA)
	smaLong := stats.SMA(prices, e.cfg.LongSMA)

	switch {
	case price > smaShort && smaShort > smaLong:
		return 1.0
	case price < smaShort && smaShort < smaLong:
		return 0.0
	default:
		return 0.5
	}
}
