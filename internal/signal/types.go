// Package signal fuses model predictions, technical scores and risk
// scores into bounded trading decisions.
package signal

import (
	"time"

	"github.com/quantrow/signalrun/internal/risk"
)

// Action is the closed set of trading decisions.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionWait Action = "WAIT"
	// ActionHold replaces WAIT when the portfolio already holds the
	// symbol: stand pat rather than stand aside.
	ActionHold Action = "HOLD"
)

// Analysis carries the sub-scores behind a signal for attribution.
type Analysis struct {
	ModelConfidence float64    `json:"transformer_confidence"`
	TechnicalScore  float64    `json:"technical_score"`
	RiskScore       float64    `json:"risk_score"`
	RiskLevel       risk.Level `json:"risk_level"`
	Volatility      float64    `json:"volatility"`
}

// TradeSignal is the immutable outcome of one scoring call.
type TradeSignal struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Action       Action    `json:"signal"`
	Price        float64   `json:"price"`
	Confidence   float64   `json:"confidence"`
	TargetPrice  float64   `json:"target_price"`
	StopLoss     float64   `json:"stop_loss"`
	RiskReward   float64   `json:"risk_reward"`
	PositionSize float64   `json:"position_size"`
	Analysis     Analysis  `json:"analysis"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// Actionable reports whether the signal calls for an order.
func (s *TradeSignal) Actionable() bool {
	return s.Action == ActionBuy || s.Action == ActionSell
}
