package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quantrow/signalrun/internal/indicators"
	"github.com/quantrow/signalrun/internal/risk"
)

// GeneratorConfig bundles the construction-time parameters of the full
// signal pipeline.
type GeneratorConfig struct {
	Combiner   CombinerConfig    `yaml:"combiner"`
	Indicators indicators.Config `yaml:"indicators"`
	Risk       risk.Config       `yaml:"risk"`
}

// DefaultGeneratorConfig returns the production pipeline configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Combiner:   DefaultCombinerConfig(),
		Indicators: indicators.DefaultConfig(),
		Risk:       risk.DefaultConfig(),
	}
}

// Deps are the generator's external collaborators. Predictor is required;
// nil Sentiment, Portfolio and Notifier fall back to neutral sentiment,
// an empty portfolio and no delivery.
type Deps struct {
	Predictor Predictor
	Sentiment SentimentProvider
	Portfolio PortfolioProvider
	Notifier  Notifier
}

// Generator runs the full scoring pipeline for one symbol: model forward
// pass, technical score, risk score, combination and delivery. Immutable
// after construction; calls for different symbols may run concurrently.
type Generator struct {
	cfg        GeneratorConfig
	deps       Deps
	indicators *indicators.Engine
	aggregator *risk.Aggregator
	combiner   *Combiner
}

// NewGenerator validates the configuration and builds the pipeline.
func NewGenerator(cfg GeneratorConfig, deps Deps) (*Generator, error) {
	if deps.Predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	if deps.Sentiment == nil {
		deps.Sentiment = NeutralSentiment{}
	}
	if deps.Portfolio == nil {
		deps.Portfolio = EmptyPortfolio{}
	}

	aggregator, err := risk.NewAggregator(cfg.Risk)
	if err != nil {
		return nil, fmt.Errorf("risk aggregator: %w", err)
	}

	return &Generator{
		cfg:        cfg,
		deps:       deps,
		indicators: indicators.NewEngine(cfg.Indicators),
		aggregator: aggregator,
		combiner:   NewCombiner(cfg.Combiner),
	}, nil
}

// Generate produces a complete trade signal for the symbol from aligned
// price and volume series.
func (g *Generator) Generate(ctx context.Context, symbol string, prices, volumes []float64) (*TradeSignal, error) {
	if len(prices) == 0 || len(prices) != len(volumes) {
		return nil, fmt.Errorf("%w: %d prices vs %d volumes", risk.ErrInvalidInput, len(prices), len(volumes))
	}

	prediction, err := g.deps.Predictor.Forward(ctx, prices)
	if err != nil {
		return nil, fmt.Errorf("predictor forward: %w", err)
	}
	if err := prediction.Validate(); err != nil {
		return nil, err
	}

	technical, err := g.indicators.Score(prices, volumes)
	if err != nil {
		return nil, fmt.Errorf("technical score: %w", err)
	}

	sentiment, err := g.deps.Sentiment.Analyze(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("sentiment analyze: %w", err)
	}

	positions, err := g.deps.Portfolio.Positions(ctx)
	if err != nil {
		return nil, fmt.Errorf("portfolio positions: %w", err)
	}
	returns, err := g.deps.Portfolio.Returns(ctx)
	if err != nil {
		return nil, fmt.Errorf("portfolio returns: %w", err)
	}

	assessment, err := g.aggregator.Score(
		risk.MarketData{Prices: prices, Volumes: volumes},
		sentiment,
		risk.PortfolioData{Positions: positions, Returns: returns},
	)
	if err != nil {
		return nil, fmt.Errorf("risk score: %w", err)
	}

	horizon := len(prediction.Prices) - 1
	decision, err := g.combiner.Combine(Inputs{
		Price:          prices[len(prices)-1],
		PredictedPrice: prediction.Prices[horizon],
		Confidence:     prediction.Confidences[horizon],
		Volatility:     prediction.Volatilities[horizon],
		TechnicalScore: technical.Composite,
		RiskScore:      assessment.Score,
	})
	if err != nil {
		return nil, fmt.Errorf("combine signals: %w", err)
	}

	action := decision.Action
	if _, held := positions[symbol]; held && action == ActionWait {
		action = ActionHold
	}

	sig := &TradeSignal{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Action:       action,
		Price:        prices[len(prices)-1],
		Confidence:   decision.Confidence,
		TargetPrice:  decision.TargetPrice,
		StopLoss:     decision.StopLoss,
		RiskReward:   decision.RiskReward,
		PositionSize: decision.PositionSize,
		Analysis: Analysis{
			ModelConfidence: prediction.Confidences[horizon],
			TechnicalScore:  technical.Composite,
			RiskScore:       assessment.Score,
			RiskLevel:       assessment.Level,
			Volatility:      prediction.Volatilities[horizon],
		},
		GeneratedAt: time.Now().UTC(),
	}

	log.Info().
		Str("symbol", symbol).
		Str("action", string(sig.Action)).
		Float64("confidence", sig.Confidence).
		Float64("risk_score", assessment.Score).
		Str("risk_level", string(assessment.Level)).
		Msg("signal generated")

	if g.deps.Notifier != nil {
		if delivered := g.deps.Notifier.SendSignal(ctx, sig); !delivered {
			log.Warn().Str("symbol", symbol).Str("signal_id", sig.ID).Msg("signal delivery failed")
		}
	}

	return sig, nil
}
