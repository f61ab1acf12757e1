// Package backtest replays a historical period sequence through the risk
// engine, threading capital forward and computing performance metrics.
package backtest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quantrow/signalrun/internal/risk"
)

// ErrEmptyHistory is returned when the input sequence has no periods.
var ErrEmptyHistory = errors.New("empty backtest history")

// RiskScorer is the scoring port the simulator drives each period.
// Production wiring uses *risk.Aggregator.
type RiskScorer interface {
	Score(market risk.MarketData, sentiment risk.SentimentData, portfolio risk.PortfolioData) (*risk.ScoreResult, error)
}

// Period is one historical step: the traded price pair plus the market,
// sentiment and portfolio state used for that period's risk score.
type Period struct {
	Date      time.Time          `json:"date"`
	Price     float64            `json:"price"`
	NextPrice float64            `json:"next_price"`
	Market    risk.MarketData    `json:"market"`
	Sentiment risk.SentimentData `json:"sentiment"`
	Portfolio risk.PortfolioData `json:"portfolio"`
}

// Params configures one simulation run.
type Params struct {
	InitialCapital float64 `yaml:"initial_capital"` // Default: 10000
	StopFraction   float64 `yaml:"stop_fraction"`   // Default: 0.05
}

// DefaultParams returns the standard run parameters.
func DefaultParams() Params {
	return Params{InitialCapital: 10000, StopFraction: 0.05}
}

// TradeRecord is one simulated period's outcome.
type TradeRecord struct {
	Date         time.Time  `json:"date"`
	RiskScore    float64    `json:"risk_score"`
	RiskLevel    risk.Level `json:"risk_level"`
	NominalSize  float64    `json:"nominal_size"`
	PositionSize float64    `json:"position_size"` // nominal scaled by risk score
	PnL          float64    `json:"pnl"`
	Capital      float64    `json:"capital"`
}

// Metrics summarizes a completed run.
type Metrics struct {
	FinalCapital       float64 `json:"final_capital"`
	TotalReturn        float64 `json:"total_return"` // percent of initial capital
	MaxDrawdown        float64 `json:"max_drawdown"` // percent, peak to trough
	SharpeRatio        float64 `json:"sharpe_ratio"` // annualized
	RiskAdjustedReturn float64 `json:"risk_adjusted_return"`
}

// Result is a completed simulation.
type Result struct {
	RunID   string        `json:"run_id"`
	Trades  []TradeRecord `json:"trades"`
	Metrics Metrics       `json:"metrics"`
}

// Simulator replays period sequences. The simulator itself is stateless;
// capital lives only inside a run, so concurrent runs are independent.
type Simulator struct {
	scorer RiskScorer
	sizer  *risk.Sizer
}

// NewSimulator creates a simulator driving the given scorer and sizer.
func NewSimulator(scorer RiskScorer, sizer *risk.Sizer) *Simulator {
	return &Simulator{scorer: scorer, sizer: sizer}
}

// Run replays the periods in chronological order. Capital is threaded
// strictly sequentially: each period trades a risk-scaled size against
// the move to the next price.
func (s *Simulator) Run(periods []Period, params Params) (*Result, error) {
	if len(periods) == 0 {
		return nil, ErrEmptyHistory
	}

	ordered := make([]Period, len(periods))
	copy(ordered, periods)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	capital := params.InitialCapital
	trades := make([]TradeRecord, 0, len(ordered))

	for _, period := range ordered {
		assessment, err := s.scorer.Score(period.Market, period.Sentiment, period.Portfolio)
		if err != nil {
			return nil, fmt.Errorf("risk score for %s: %w", period.Date.Format(time.RFC3339), err)
		}

		stop := period.Price * (1 - params.StopFraction)
		size, err := s.sizer.Size(capital, period.Price, stop)
		if err != nil {
			return nil, fmt.Errorf("position size for %s: %w", period.Date.Format(time.RFC3339), err)
		}

		adjustedSize := size.PositionSize * (assessment.Score / 100)
		pnl := adjustedSize * (period.NextPrice - period.Price)
		capital += pnl

		trades = append(trades, TradeRecord{
			Date:         period.Date,
			RiskScore:    assessment.Score,
			RiskLevel:    assessment.Level,
			NominalSize:  size.PositionSize,
			PositionSize: adjustedSize,
			PnL:          pnl,
			Capital:      capital,
		})
	}

	result := &Result{
		RunID:   uuid.NewString(),
		Trades:  trades,
		Metrics: computeMetrics(trades, params.InitialCapital),
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("periods", len(trades)).
		Float64("final_capital", result.Metrics.FinalCapital).
		Float64("max_drawdown", result.Metrics.MaxDrawdown).
		Msg("backtest completed")

	return result, nil
}
