package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid scoring config")

// Weights are the composite score coefficients.
type Weights struct {
	Profitability float64
	Activity      float64
	Efficiency    float64
	Stability     float64
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Profitability + w.Activity + w.Efficiency + w.Stability
}

// RiskThresholds controls risk tier assignment.
type RiskThresholds struct {
	LowDailyRate      float64 // daily rate above this is Low risk
	ModerateDailyRate float64 // daily rate above this is Moderate risk
	MaxPairDiversity  int     // diversity above this escalates one tier
}

// Config holds scorer parameters.
type Config struct {
	// WindowDays is the observation window length in days used for daily rate.
	WindowDays float64
	Weights    Weights
	Risk       RiskThresholds
}

// Observation windows of the two analysis variants.
const (
	NetworkWindowDays = 1.5 // 36h ledger lookback
	DomainWindowDays  = 2.0 // 48h asset flow lookback
)

// DefaultWeights returns 0.4/0.3/0.2/0.1.
func DefaultWeights() Weights {
	return Weights{Profitability: 0.4, Activity: 0.3, Efficiency: 0.2, Stability: 0.1}
}

// DefaultRiskThresholds returns 100/10 swaps per day and diversity 20.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{LowDailyRate: 100, ModerateDailyRate: 10, MaxPairDiversity: 20}
}

// DefaultConfig returns the network-run configuration.
func DefaultConfig() Config {
	return Config{
		WindowDays: NetworkWindowDays,
		Weights:    DefaultWeights(),
		Risk:       DefaultRiskThresholds(),
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.WindowDays <= 0 || math.IsNaN(c.WindowDays) || math.IsInf(c.WindowDays, 0) {
		return fmt.Errorf("%w: window_days must be positive", ErrInvalidConfig)
	}
	w := c.Weights
	if w.Profitability < 0 || w.Activity < 0 || w.Efficiency < 0 || w.Stability < 0 {
		return fmt.Errorf("%w: weights must be >= 0", ErrInvalidConfig)
	}
	if w.Sum() == 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalidConfig)
	}
	if c.Risk.ModerateDailyRate > c.Risk.LowDailyRate {
		return fmt.Errorf("%w: moderate daily rate %.2f exceeds low daily rate %.2f",
			ErrInvalidConfig, c.Risk.ModerateDailyRate, c.Risk.LowDailyRate)
	}
	return nil
}
