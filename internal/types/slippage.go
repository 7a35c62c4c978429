// internal/types/slippage.go
package types

import (
	"fmt"
	"math"
)

// SlippageBps is a price tolerance in basis points (50 = 0.50%).
type SlippageBps int

// DefaultSlippage is applied when a flow is opened.
const DefaultSlippage SlippageBps = 100

// SlippageOptions is the fixed set a user can pick from. Free text is never accepted.
var SlippageOptions = []SlippageBps{50, 100, 300, 500, 1000}

// ParseSlippage accepts only values from SlippageOptions.
func ParseSlippage(bps int) (SlippageBps, error) {
	for _, opt := range SlippageOptions {
		if int(opt) == bps {
			return opt, nil
		}
	}
	return 0, fmt.Errorf("slippage %d bps is not one of the offered options", bps)
}

// Percent returns the tolerance as a percentage (100 bps = 1.0).
func (s SlippageBps) Percent() float64 {
	return float64(s) / 100.0
}

// String renders the tolerance for display, e.g. "0.50%".
func (s SlippageBps) String() string {
	return fmt.Sprintf("%.2f%%", s.Percent())
}

// MinAmountOut estimates the lowest output accepted for an expected output.
func (s SlippageBps) MinAmountOut(expected float64) float64 {
	if expected <= 0 || math.IsNaN(expected) || math.IsInf(expected, 0) {
		return 0
	}
	return expected * (1.0 - float64(s)/10_000.0)
}
