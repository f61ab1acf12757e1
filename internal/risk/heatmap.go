package risk

import "sort"

// Position is a held position keyed by its unique symbol.
type Position struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// ExposureBucket is the closed set of concentration buckets.
type ExposureBucket string

const (
	BucketHighRisk   ExposureBucket = "high_risk"   // >20% of total exposure
	BucketMediumRisk ExposureBucket = "medium_risk" // 10-20%
	BucketLowRisk    ExposureBucket = "low_risk"
)

// Exposure ratio boundaries for the concentration buckets.
const (
	highExposureRatio   = 0.2
	mediumExposureRatio = 0.1
)

// HeatMap partitions positions by exposure concentration. Every input
// symbol lands in exactly one bucket.
type HeatMap struct {
	Buckets       map[ExposureBucket][]string `json:"buckets"`
	Ratios        map[string]float64          `json:"ratios"`
	TotalExposure float64                     `json:"total_exposure"`
}

// BuildHeatMap partitions positions by their share of total exposure.
// An empty position map yields empty buckets; positions that sum to zero
// exposure make the ratios undefined and fail.
func BuildHeatMap(positions map[string]Position) (*HeatMap, error) {
	hm := &HeatMap{
		Buckets: map[ExposureBucket][]string{
			BucketHighRisk:   {},
			BucketMediumRisk: {},
			BucketLowRisk:    {},
		},
		Ratios: make(map[string]float64),
	}
	if len(positions) == 0 {
		return hm, nil
	}

	for _, pos := range positions {
		hm.TotalExposure += pos.Value
	}
	if hm.TotalExposure == 0 {
		return nil, ErrInvalidPortfolioState
	}

	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		ratio := positions[symbol].Value / hm.TotalExposure
		hm.Ratios[symbol] = ratio
		bucket := bucketFor(ratio)
		hm.Buckets[bucket] = append(hm.Buckets[bucket], symbol)
	}

	return hm, nil
}

func bucketFor(ratio float64) ExposureBucket {
	switch {
	case ratio > highExposureRatio:
		return BucketHighRisk
	case ratio > mediumExposureRatio:
		return BucketMediumRisk
	default:
		return BucketLowRisk
	}
}
