package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantrow/signalrun/internal/backtest"
	"github.com/quantrow/signalrun/internal/broker"
	"github.com/quantrow/signalrun/internal/cache"
	"github.com/quantrow/signalrun/internal/config"
	"github.com/quantrow/signalrun/internal/feed"
	httpapi "github.com/quantrow/signalrun/internal/http"
	"github.com/quantrow/signalrun/internal/metrics"
	"github.com/quantrow/signalrun/internal/persistence/postgres"
	"github.com/quantrow/signalrun/internal/providers"
	"github.com/quantrow/signalrun/internal/risk"
	sig "github.com/quantrow/signalrun/internal/signal"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	registry := metrics.NewRegistry()

	// Predictor: remote model service when configured, drift
	// extrapolation otherwise.
	var predictor sig.Predictor = providers.OfflinePredictor{}
	if cfg.Providers.PredictorURL != "" {
		predictor = providers.NewPredictorClient(providers.ClientConfig{
			BaseURL: cfg.Providers.PredictorURL,
			Timeout: cfg.ProviderTimeout(),
			RPS:     cfg.Providers.RequestsPerSecond,
			Burst:   cfg.Providers.Burst,
		}, log.Logger)
	}

	var sentiment sig.SentimentProvider
	if cfg.Providers.SentimentURL != "" {
		sentiment = providers.NewSentimentClient(providers.ClientConfig{
			BaseURL: cfg.Providers.SentimentURL,
			Timeout: cfg.ProviderTimeout(),
			RPS:     cfg.Providers.RequestsPerSecond,
			Burst:   cfg.Providers.Burst,
		}, log.Logger)
	}

	notifier := sig.FanOutNotifier{sig.LogNotifier{Log: log.Logger}}
	if cfg.Broker.Paper {
		paper := broker.NewPaper(nil, map[string]float64{"USD": cfg.Broker.CashUSD})
		notifier = append(notifier, broker.NewExecutor(paper, log.Logger))
		log.Info().Float64("cash_usd", cfg.Broker.CashUSD).Msg("Paper broker enabled")
	}

	generator, err := sig.NewGenerator(cfg.Signal, sig.Deps{
		Predictor: predictor,
		Sentiment: sentiment,
		Notifier:  notifier,
	})
	if err != nil {
		return fmt.Errorf("build generator: %w", err)
	}

	aggregator, err := risk.NewAggregator(cfg.Signal.Risk)
	if err != nil {
		return fmt.Errorf("build aggregator: %w", err)
	}
	simulator := backtest.NewSimulator(aggregator, risk.NewSizer(cfg.Signal.Combiner.RiskPerTrade))

	deps := httpapi.Deps{
		Generator:  generator,
		Aggregator: aggregator,
		Simulator:  simulator,
		Metrics:    registry,
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, cache disabled")
		} else {
			deps.Cache = cache.NewSignalCache(client, cfg.RedisTTL())
			defer client.Close()
		}
	}

	if cfg.Postgres.DSN != "" {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		deps.Signals = postgres.NewSignalRepo(db, cfg.PostgresTimeout())
		deps.Backtests = postgres.NewBacktestRepo(db, cfg.PostgresTimeout())
	}

	if cfg.Feed.URL != "" {
		f := feed.New(cfg.Feed.URL, cfg.Feed.Window, log.Logger)
		deps.Windows = f
		go func() {
			if err := f.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("Feed stopped")
			}
		}()
	}

	server := httpapi.NewServer(httpapi.Config{
		Addr:         cfg.Server.Addr,
		RateLimitRPS: cfg.Server.RateLimitRPS,
		Burst:        cfg.Server.RateLimitBurst,
	}, deps, log.Logger)

	return server.ListenAndServe(ctx)
}
