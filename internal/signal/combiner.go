package signal

import (
	"fmt"

	"github.com/quantrow/signalrun/internal/risk"
)

// Final-score weighting of confidence, technical score and risk score.
const (
	confidenceWeight = 0.3
	technicalWeight  = 0.3
	riskWeight       = 0.4
)

// sizingNotionalUSD is the fixed notional the risk-proportional position
// size is taken against.
// TODO: size against the connected broker's account balance; this constant
// keeps the fix to a one-line change.
const sizingNotionalUSD = 100.0

// CombinerConfig holds the decision thresholds.
type CombinerConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"` // Default: 0.7
	MinRiskReward       float64 `yaml:"min_risk_reward"`      // Default: 2.0
	ActionScore         float64 `yaml:"action_score"`         // Default: 0.7
	RiskPerTrade        float64 `yaml:"risk_per_trade"`       // Default: 0.02
}

// DefaultCombinerConfig returns the production decision thresholds.
func DefaultCombinerConfig() CombinerConfig {
	return CombinerConfig{
		ConfidenceThreshold: 0.7,
		MinRiskReward:       2.0,
		ActionScore:         0.7,
		RiskPerTrade:        risk.DefaultRiskPerTrade,
	}
}

// Combiner fuses one period's model output, technical score and risk
// score into a trading decision. Immutable after construction.
type Combiner struct {
	cfg CombinerConfig
}

// NewCombiner creates a signal combiner with the given thresholds.
func NewCombiner(cfg CombinerConfig) *Combiner {
	return &Combiner{cfg: cfg}
}

// Inputs is one period's fused decision input.
type Inputs struct {
	Price          float64
	PredictedPrice float64
	Confidence     float64 // [0,1]
	Volatility     float64 // fraction of price
	TechnicalScore float64 // [0,1]
	RiskScore      float64 // [0,100]
}

// Decision is the combiner's outcome.
type Decision struct {
	Action       Action  `json:"action"`
	Confidence   float64 `json:"confidence"`
	TargetPrice  float64 `json:"target_price"`
	StopLoss     float64 `json:"stop_loss"`
	RiskReward   float64 `json:"risk_reward"`
	PositionSize float64 `json:"position_size"`
	PriceChange  float64 `json:"price_change"`
	FinalScore   float64 `json:"final_score"`
}

// Combine runs the decision sequence: bail to WAIT on weak confidence,
// place a volatility-scaled stop, project the minimum risk/reward target,
// fuse the final score and gate BUY/SELL on predicted move versus
// volatility.
func (c *Combiner) Combine(in Inputs) (*Decision, error) {
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price %.4f", risk.ErrInvalidInput, in.Price)
	}

	priceChange := (in.PredictedPrice - in.Price) / in.Price

	if in.Confidence < c.cfg.ConfidenceThreshold {
		return &Decision{
			Action:      ActionWait,
			Confidence:  in.Confidence,
			PriceChange: priceChange,
		}, nil
	}

	if in.Volatility == 0 {
		return nil, risk.ErrInvalidVolatility
	}

	var stopLoss float64
	if priceChange > 0 {
		stopLoss = in.Price * (1 - in.Volatility)
	} else {
		stopLoss = in.Price * (1 + in.Volatility)
	}

	priceRisk := abs(in.Price - stopLoss)
	var target float64
	if priceChange > 0 {
		target = in.Price + priceRisk*c.cfg.MinRiskReward
	} else {
		target = in.Price - priceRisk*c.cfg.MinRiskReward
	}
	riskReward := abs(target-in.Price) / abs(stopLoss-in.Price)

	finalScore := in.Confidence*confidenceWeight +
		in.TechnicalScore*technicalWeight +
		(in.RiskScore/100)*riskWeight

	action := ActionWait
	switch {
	case priceChange > in.Volatility && finalScore > c.cfg.ActionScore:
		action = ActionBuy
	case priceChange < -in.Volatility && finalScore > c.cfg.ActionScore:
		action = ActionSell
	}

	riskAmount := sizingNotionalUSD * c.cfg.RiskPerTrade * (in.RiskScore / 100)

	return &Decision{
		Action:       action,
		Confidence:   finalScore,
		TargetPrice:  target,
		StopLoss:     stopLoss,
		RiskReward:   riskReward,
		PositionSize: riskAmount / priceRisk,
		PriceChange:  priceChange,
		FinalScore:   finalScore,
	}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
