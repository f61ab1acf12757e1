// Package regime classifies volatility and volume conditions into a
// discrete market regime with an attached risk multiplier. The regime
// score is one of the four components fused by the risk aggregator.
package regime

import (
	"errors"
	"fmt"

	"github.com/quantrow/signalrun/internal/stats"
)

// Regime is the closed set of market regime classifications.
type Regime string

const (
	HighRisk   Regime = "high_risk"   // volatile and heavy volume
	Volatile   Regime = "volatile"    // volatile only
	HighVolume Regime = "high_volume" // heavy volume only
	Normal     Regime = "normal"
)

var (
	// ErrNoData is returned when either input series is empty.
	ErrNoData = errors.New("no market data")
	// ErrZeroVolume is returned when the average volume is zero, which
	// makes the volume ratio undefined.
	ErrZeroVolume = errors.New("zero average volume")
)

// Config holds the detector thresholds.
type Config struct {
	VolumeBurstRatio float64 `yaml:"volume_burst_ratio"` // Default: 1.5
}

// DefaultConfig returns the standard detector configuration.
func DefaultConfig() Config {
	return Config{VolumeBurstRatio: 1.5}
}

// Detector classifies market regimes. Safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector creates a regime detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Detection is the result of one regime classification.
type Detection struct {
	Regime         Regime  `json:"regime"`
	RiskMultiplier float64 `json:"risk_multiplier"`
	Volatility     float64 `json:"volatility"`
	VolumeRatio    float64 `json:"volume_ratio"`
}

// condition is the pair of boolean votes that selects a regime.
type condition struct {
	HighVolatility bool
	HighVolume     bool
}

// classifications is the exhaustive condition-to-regime table.
var classifications = map[condition]Detection{
	{true, true}:   {Regime: HighRisk, RiskMultiplier: 0.5},
	{true, false}:  {Regime: Volatile, RiskMultiplier: 0.7},
	{false, true}:  {Regime: HighVolume, RiskMultiplier: 0.8},
	{false, false}: {Regime: Normal, RiskMultiplier: 1.0},
}

// Detect classifies the current regime from raw price and volume series.
func (d *Detector) Detect(prices, volumes []float64) (*Detection, error) {
	if len(prices) == 0 || len(volumes) == 0 {
		return nil, fmt.Errorf("%w: %d prices, %d volumes", ErrNoData, len(prices), len(volumes))
	}

	volatility := stats.StdDev(prices)
	avgVolume := stats.Mean(volumes)
	if avgVolume == 0 {
		return nil, ErrZeroVolume
	}
	recentVolume := volumes[len(volumes)-1]
	volumeRatio := recentVolume / avgVolume

	cond := condition{
		HighVolatility: highVolatility(volatility),
		HighVolume:     recentVolume > avgVolume*d.cfg.VolumeBurstRatio,
	}

	det := classifications[cond]
	det.Volatility = volatility
	det.VolumeRatio = volumeRatio
	return &det, nil
}

// highVolatility votes on the volatility leg. The baseline sample holds
// only the current observation, so the threshold collapses to the
// observation itself and the vote cannot trip.
// TODO: thread a trailing window of per-period volatilities through Detect
// so this vote has a real baseline to compare against.
func highVolatility(volatility float64) bool {
	sample := []float64{volatility}
	return volatility > stats.Mean(sample)+stats.StdDev(sample)
}
