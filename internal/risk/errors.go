package risk

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the risk engine. Specific sentinels wrap their
// category so callers can match either the exact condition or the class.
var (
	// ErrInvalidInput covers malformed series: mismatched lengths or
	// missing lookback history.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData covers series with too few samples for a
	// statistic to be defined.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateMarket covers numerically undefined market states:
	// zero variance, zero price risk, zero exposure, zero volatility.
	ErrDegenerateMarket = errors.New("degenerate market state")

	// ErrZeroVariance flags a constant return series, for which Pearson
	// correlation is undefined.
	ErrZeroVariance = fmt.Errorf("%w: zero return variance", ErrDegenerateMarket)

	// ErrInvalidPortfolioState flags held positions whose total exposure
	// sums to zero, making concentration ratios undefined.
	ErrInvalidPortfolioState = fmt.Errorf("%w: zero total exposure", ErrDegenerateMarket)

	// ErrInvalidStopLoss flags a stop placed exactly at the entry price.
	ErrInvalidStopLoss = fmt.Errorf("%w: zero price risk", ErrDegenerateMarket)

	// ErrInvalidVolatility flags a zero volatility estimate, for which
	// leverage and stop distances are undefined.
	ErrInvalidVolatility = fmt.Errorf("%w: zero volatility", ErrDegenerateMarket)
)
