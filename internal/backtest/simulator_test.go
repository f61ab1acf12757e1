package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantrow/signalrun/internal/risk"
)

// fixedScorer returns the same risk score for every period.
type fixedScorer struct {
	score float64
}

func (s fixedScorer) Score(risk.MarketData, risk.SentimentData, risk.PortfolioData) (*risk.ScoreResult, error) {
	return &risk.ScoreResult{Score: s.score, Level: risk.LevelFor(s.score)}, nil
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func TestRunFlatMarket(t *testing.T) {
	sim := NewSimulator(fixedScorer{score: 100}, risk.NewSizer(risk.DefaultRiskPerTrade))

	periods := []Period{
		{Date: day(1), Price: 100, NextPrice: 100},
		{Date: day(2), Price: 100, NextPrice: 100},
		{Date: day(3), Price: 100, NextPrice: 100},
	}

	result, err := sim.Run(periods, DefaultParams())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Trades, 3)
	for _, trade := range result.Trades {
		assert.Zero(t, trade.PnL)
		assert.Equal(t, 10000.0, trade.Capital)
	}
	assert.Equal(t, 10000.0, result.Metrics.FinalCapital)
	assert.Zero(t, result.Metrics.TotalReturn)
	assert.Zero(t, result.Metrics.MaxDrawdown)
	assert.Zero(t, result.Metrics.SharpeRatio)
	assert.Zero(t, result.Metrics.RiskAdjustedReturn)
}

func TestRunThreadsCapital(t *testing.T) {
	sim := NewSimulator(fixedScorer{score: 100}, risk.NewSizer(risk.DefaultRiskPerTrade))

	periods := []Period{
		{Date: day(1), Price: 100, NextPrice: 101},
		{Date: day(2), Price: 101, NextPrice: 100},
	}

	result, err := sim.Run(periods, DefaultParams())
	require.NoError(t, err)
	require.Len(t, result.Trades, 2)

	// 2% of 10000 over a 5-point stop buys 40 units; a 1-point move
	// yields 40.
	first := result.Trades[0]
	assert.InDelta(t, 40.0, first.PositionSize, 1e-9)
	assert.InDelta(t, 40.0, first.PnL, 1e-9)
	assert.InDelta(t, 10040.0, first.Capital, 1e-9)

	// The second period sizes off the grown capital, not the initial.
	second := result.Trades[1]
	wantSize := 10040.0 * 0.02 / (101 * 0.05)
	assert.InDelta(t, wantSize, second.PositionSize, 1e-9)
	assert.InDelta(t, 10040.0-wantSize, second.Capital, 1e-9)

	assert.Greater(t, result.Metrics.MaxDrawdown, 0.0)
	// Two trades produce a single period return, not enough for Sharpe.
	assert.Zero(t, result.Metrics.SharpeRatio)
}

func TestRunScalesSizeByRiskScore(t *testing.T) {
	sim := NewSimulator(fixedScorer{score: 50}, risk.NewSizer(risk.DefaultRiskPerTrade))

	result, err := sim.Run([]Period{
		{Date: day(1), Price: 100, NextPrice: 101},
	}, DefaultParams())
	require.NoError(t, err)

	trade := result.Trades[0]
	assert.InDelta(t, 40.0, trade.NominalSize, 1e-9)
	assert.InDelta(t, 20.0, trade.PositionSize, 1e-9)
	assert.InDelta(t, 20.0, trade.PnL, 1e-9)
}

func TestRunZeroRiskScoreStaysFlat(t *testing.T) {
	sim := NewSimulator(fixedScorer{score: 0}, risk.NewSizer(risk.DefaultRiskPerTrade))

	// A maximum-risk market moves, but a zero score sizes every trade
	// to nothing, so no capital is ever exposed.
	periods := []Period{
		{Date: day(1), Price: 100, NextPrice: 110},
		{Date: day(2), Price: 110, NextPrice: 90},
	}

	result, err := sim.Run(periods, DefaultParams())
	require.NoError(t, err)
	require.Len(t, result.Trades, 2)

	for _, trade := range result.Trades {
		assert.Positive(t, trade.NominalSize)
		assert.Zero(t, trade.PositionSize)
		assert.Zero(t, trade.PnL)
		assert.Equal(t, 10000.0, trade.Capital)
	}
	assert.Equal(t, 10000.0, result.Metrics.FinalCapital)
	assert.Zero(t, result.Metrics.TotalReturn)
	assert.Zero(t, result.Metrics.MaxDrawdown)
	assert.Zero(t, result.Metrics.SharpeRatio)
	assert.Zero(t, result.Metrics.RiskAdjustedReturn)
}

func TestRunSortsByDate(t *testing.T) {
	sim := NewSimulator(fixedScorer{score: 100}, risk.NewSizer(risk.DefaultRiskPerTrade))

	periods := []Period{
		{Date: day(3), Price: 100, NextPrice: 100},
		{Date: day(1), Price: 100, NextPrice: 100},
		{Date: day(2), Price: 100, NextPrice: 100},
	}

	result, err := sim.Run(periods, DefaultParams())
	require.NoError(t, err)
	require.Len(t, result.Trades, 3)
	assert.Equal(t, day(1), result.Trades[0].Date)
	assert.Equal(t, day(2), result.Trades[1].Date)
	assert.Equal(t, day(3), result.Trades[2].Date)

	// The input slice is left untouched.
	assert.Equal(t, day(3), periods[0].Date)
}

func TestRunEmptyHistory(t *testing.T) {
	sim := NewSimulator(fixedScorer{score: 100}, risk.NewSizer(risk.DefaultRiskPerTrade))

	_, err := sim.Run(nil, DefaultParams())
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestMaxDrawdown(t *testing.T) {
	trades := []TradeRecord{
		{Capital: 10000},
		{Capital: 12000},
		{Capital: 9000}, // 25% off the 12000 peak
		{Capital: 11000},
	}
	assert.InDelta(t, 25.0, maxDrawdownPct(trades), 1e-9)
}

func TestPeriodReturnsSkipsWipedOutCapital(t *testing.T) {
	trades := []TradeRecord{
		{Capital: 100},
		{Capital: 0},
		{Capital: 50},
	}

	// The wipe-out itself is a -100% return; the recovery from zero has
	// no defined base and is dropped.
	returns := periodReturns(trades)
	require.Len(t, returns, 1)
	assert.Equal(t, -1.0, returns[0])
}

func TestRiskAdjustedReturn(t *testing.T) {
	trades := []TradeRecord{
		{Capital: 10000},
		{Capital: 12000},
		{Capital: 9000},
		{Capital: 11000},
	}
	// 10% total return over a 25% drawdown.
	assert.InDelta(t, 0.4, riskAdjustedReturn(trades, 25.0), 1e-9)
	assert.Zero(t, riskAdjustedReturn(trades, 0))
}
