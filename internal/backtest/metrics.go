package backtest

import (
	"math"

	"github.com/quantrow/signalrun/internal/stats"
)

// tradingDaysPerYear annualizes the per-period Sharpe ratio.
const tradingDaysPerYear = 252

func computeMetrics(trades []TradeRecord, initialCapital float64) Metrics {
	finalCapital := trades[len(trades)-1].Capital
	maxDrawdown := maxDrawdownPct(trades)

	return Metrics{
		FinalCapital:       finalCapital,
		TotalReturn:        (finalCapital - initialCapital) / initialCapital * 100,
		MaxDrawdown:        maxDrawdown,
		SharpeRatio:        sharpeRatio(trades),
		RiskAdjustedReturn: riskAdjustedReturn(trades, maxDrawdown),
	}
}

// maxDrawdownPct is the largest peak-to-trough decline of the capital
// curve, as a percentage of the peak.
func maxDrawdownPct(trades []TradeRecord) float64 {
	peak := trades[0].Capital
	maxDD := 0.0
	for _, t := range trades {
		if t.Capital > peak {
			peak = t.Capital
		}
		if dd := (peak - t.Capital) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

// sharpeRatio annualizes mean/std of the per-period capital returns.
// Fewer than two returns, or a flat curve, is defined as 0.
func sharpeRatio(trades []TradeRecord) float64 {
	returns := periodReturns(trades)
	if len(returns) < 2 {
		return 0
	}
	std := stats.StdDev(returns)
	if std == 0 {
		return 0
	}
	return stats.Mean(returns) / std * math.Sqrt(tradingDaysPerYear)
}

// riskAdjustedReturn divides the capital-curve return by the drawdown
// fraction; a drawdown-free run is defined as 0.
func riskAdjustedReturn(trades []TradeRecord, maxDrawdownPct float64) float64 {
	if maxDrawdownPct == 0 {
		return 0
	}
	first := trades[0].Capital
	last := trades[len(trades)-1].Capital
	totalReturn := (last - first) / first
	return totalReturn / (maxDrawdownPct / 100)
}

// periodReturns computes the capital curve's step-to-step returns. A
// period starting from zero capital has no defined return and is
// dropped from the sample.
func periodReturns(trades []TradeRecord) []float64 {
	if len(trades) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(trades)-1)
	for i := 1; i < len(trades); i++ {
		prev := trades[i-1].Capital
		if prev == 0 {
			continue
		}
		returns = append(returns, (trades[i].Capital-prev)/prev)
	}
	return returns
}
