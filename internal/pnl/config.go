package pnl

import (
	"errors"
	"fmt"
)

// MatchPolicy selects which pending acquisition a disposal consumes when
// more than one is within tolerance.
type MatchPolicy string

const (
	// MatchFirst consumes the earliest-pushed entry within tolerance.
	MatchFirst MatchPolicy = "first"
	// MatchNearest consumes the entry with the smallest amount difference,
	// earliest first on ties.
	MatchNearest MatchPolicy = "nearest"
)

// Default estimator parameters.
const (
	DefaultFeePerSwap   = 0.00001 // 100 stroops per operation
	DefaultSlippageRate = 0.005
	DefaultTolerance    = 0.01
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid pnl config")

// Config holds the trade matcher parameters.
type Config struct {
	FeePerSwap   float64     // flat native fee charged once per event
	SlippageRate float64     // fraction removed from each realized round trip
	Tolerance    float64     // absolute amount tolerance for round-trip matching
	Policy       MatchPolicy // first | nearest
}

// DefaultConfig returns the standard estimator parameters.
func DefaultConfig() Config {
	return Config{
		FeePerSwap:   DefaultFeePerSwap,
		SlippageRate: DefaultSlippageRate,
		Tolerance:    DefaultTolerance,
		Policy:       MatchFirst,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.FeePerSwap < 0 {
		return fmt.Errorf("%w: fee_per_swap must be >= 0", ErrInvalidConfig)
	}
	if c.SlippageRate < 0 || c.SlippageRate >= 1 {
		return fmt.Errorf("%w: slippage_rate must be in [0,1)", ErrInvalidConfig)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be >= 0", ErrInvalidConfig)
	}
	switch c.Policy {
	case MatchFirst, MatchNearest:
	default:
		return fmt.Errorf("%w: unknown match policy %q", ErrInvalidConfig, c.Policy)
	}
	return nil
}
