// Package config loads and validates the engine's YAML configuration.
// A loaded Config is immutable: the engines copy what they need at
// construction time.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantrow/signalrun/internal/backtest"
	"github.com/quantrow/signalrun/internal/signal"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// weightTolerance is the permitted deviation of a weight set from 1.0.
const weightTolerance = 1e-6

// Config is the full engine configuration.
type Config struct {
	Signal   signal.GeneratorConfig `yaml:"signal"`
	Backtest backtest.Params        `yaml:"backtest"`

	Server struct {
		Addr           string  `yaml:"addr"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Redis struct {
		Addr       string `yaml:"addr"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`

	Postgres struct {
		DSN            string `yaml:"dsn"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"postgres"`

	Providers struct {
		PredictorURL      string  `yaml:"predictor_url"`
		SentimentURL      string  `yaml:"sentiment_url"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
	} `yaml:"providers"`

	Feed struct {
		URL    string `yaml:"url"`
		Window int    `yaml:"window"`
	} `yaml:"feed"`

	Broker struct {
		Paper   bool    `yaml:"paper"`
		CashUSD float64 `yaml:"cash_usd"`
	} `yaml:"broker"`
}

// Default returns the production configuration.
func Default() Config {
	var c Config
	c.Signal = signal.DefaultGeneratorConfig()
	c.Backtest = backtest.DefaultParams()

	c.Server.Addr = ":8080"
	c.Server.RateLimitRPS = 10
	c.Server.RateLimitBurst = 20

	c.Redis.Addr = "localhost:6379"
	c.Redis.TTLSeconds = 300

	c.Postgres.TimeoutSeconds = 5

	c.Providers.RequestsPerSecond = 5
	c.Providers.Burst = 10
	c.Providers.TimeoutSeconds = 10

	c.Feed.Window = 100

	c.Broker.CashUSD = 10000
	return c
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks weight sums and threshold ranges.
func (c *Config) Validate() error {
	if sum := c.Signal.Risk.Weights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: risk weights sum to %.6f, want 1.0", ErrInvalidConfig, sum)
	}
	if sum := c.Signal.Risk.SentimentWeights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: sentiment weights sum to %.6f, want 1.0", ErrInvalidConfig, sum)
	}
	if t := c.Signal.Combiner.ConfidenceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: confidence threshold %.4f outside [0,1]", ErrInvalidConfig, t)
	}
	if t := c.Signal.Combiner.ActionScore; t < 0 || t > 1 {
		return fmt.Errorf("%w: action score %.4f outside [0,1]", ErrInvalidConfig, t)
	}
	if t := c.Signal.Risk.CorrelationThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("%w: correlation threshold %.4f outside (0,1]", ErrInvalidConfig, t)
	}
	if r := c.Signal.Combiner.RiskPerTrade; r <= 0 || r > 1 {
		return fmt.Errorf("%w: risk per trade %.4f outside (0,1]", ErrInvalidConfig, r)
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital %.2f must be positive", ErrInvalidConfig, c.Backtest.InitialCapital)
	}
	if s := c.Backtest.StopFraction; s <= 0 || s >= 1 {
		return fmt.Errorf("%w: stop fraction %.4f outside (0,1)", ErrInvalidConfig, s)
	}
	if c.Broker.Paper && c.Broker.CashUSD <= 0 {
		return fmt.Errorf("%w: paper broker cash %.2f must be positive", ErrInvalidConfig, c.Broker.CashUSD)
	}
	return nil
}

// RedisTTL returns the signal cache TTL.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// PostgresTimeout returns the repository call timeout.
func (c *Config) PostgresTimeout() time.Duration {
	return time.Duration(c.Postgres.TimeoutSeconds) * time.Second
}

// ProviderTimeout returns the collaborator HTTP timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Providers.TimeoutSeconds) * time.Second
}
