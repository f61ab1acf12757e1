package risk

import (
	"fmt"
	"math"
)

// DefaultRiskPerTrade commits 2% of account equity per trade.
const DefaultRiskPerTrade = 0.02

// maxLeverageCap bounds safe leverage regardless of how calm the market is.
const maxLeverageCap = 3.0

// Sizer computes risk-budget position sizes and leverage safety.
// Immutable after construction, safe for concurrent use.
type Sizer struct {
	riskPerTrade float64
}

// NewSizer creates a position sizer risking the given fraction of the
// account balance per trade.
func NewSizer(riskPerTrade float64) *Sizer {
	return &Sizer{riskPerTrade: riskPerTrade}
}

// RiskPerTrade returns the configured per-trade risk fraction.
func (s *Sizer) RiskPerTrade() float64 {
	return s.riskPerTrade
}

// SizeResult is the outcome of one position sizing call.
type SizeResult struct {
	PositionSize  float64 `json:"position_size"`  // units of the asset
	PositionValue float64 `json:"position_value"` // size x entry price
	RiskAmount    float64 `json:"risk_amount"`    // account currency at risk
	RiskPercent   float64 `json:"risk_percent"`
}

// Size computes the position size that risks the configured fraction of
// the balance between entry and stop. A stop at the entry price makes the
// size undefined.
func (s *Sizer) Size(accountBalance, entryPrice, stopPrice float64) (*SizeResult, error) {
	if accountBalance <= 0 {
		return nil, fmt.Errorf("%w: account balance %.2f", ErrInvalidInput, accountBalance)
	}
	priceRisk := math.Abs(entryPrice - stopPrice)
	if priceRisk == 0 {
		return nil, ErrInvalidStopLoss
	}

	maxRiskAmount := accountBalance * s.riskPerTrade
	positionSize := maxRiskAmount / priceRisk

	return &SizeResult{
		PositionSize:  positionSize,
		PositionValue: positionSize * entryPrice,
		RiskAmount:    maxRiskAmount,
		RiskPercent:   s.riskPerTrade * 100,
	}, nil
}

// LeverageResult is the outcome of a leverage safety check.
type LeverageResult struct {
	MaxSafeLeverage float64 `json:"max_safe_leverage"`
	CurrentLeverage float64 `json:"current_leverage"`
	IsSafe          bool    `json:"is_safe"`
}

// SafeLeverage checks the current leverage against a volatility-scaled
// ceiling, capped at 3x.
func (s *Sizer) SafeLeverage(accountBalance, positionValue, volatility float64) (*LeverageResult, error) {
	if accountBalance <= 0 {
		return nil, fmt.Errorf("%w: account balance %.2f", ErrInvalidInput, accountBalance)
	}
	if volatility == 0 {
		return nil, ErrInvalidVolatility
	}

	maxSafe := math.Min(maxLeverageCap, 1.0/volatility)
	current := positionValue / accountBalance

	return &LeverageResult{
		MaxSafeLeverage: maxSafe,
		CurrentLeverage: current,
		IsSafe:          current <= maxSafe,
	}, nil
}
