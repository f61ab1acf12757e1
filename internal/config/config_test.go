package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signalrun.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 10000.0, c.Backtest.InitialCapital)
	assert.Equal(t, 0.7, c.Signal.Combiner.ConfidenceThreshold)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
backtest:
  initial_capital: 50000
signal:
  combiner:
    confidence_threshold: 0.8
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, 50000.0, c.Backtest.InitialCapital)
	assert.Equal(t, 0.8, c.Signal.Combiner.ConfidenceThreshold)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.05, c.Backtest.StopFraction)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, 14, c.Signal.Indicators.RSIPeriod)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad weights", "signal:\n  risk:\n    weights:\n      market_regime: 0.9\n"},
		{"confidence out of range", "signal:\n  combiner:\n    confidence_threshold: 1.5\n"},
		{"zero capital", "backtest:\n  initial_capital: 0\n"},
		{"stop fraction too large", "backtest:\n  stop_fraction: 1.0\n"},
		{"paper broker without cash", "broker:\n  paper: true\n  cash_usd: 0\n"},
		{"malformed yaml", "signal: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	c := Default()
	assert.Equal(t, "5m0s", c.RedisTTL().String())
	assert.Equal(t, "5s", c.PostgresTimeout().String())
	assert.Equal(t, "10s", c.ProviderTimeout().String())
}
