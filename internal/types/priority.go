package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type PriorityLevel string

const (
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
)

// PriorityLevels is the display order of the fee picker.
var PriorityLevels = []PriorityLevel{PriorityLow, PriorityMedium, PriorityHigh, PriorityExtreme}

// DefaultPriority is applied when a Solana flow is opened.
const DefaultPriority = PriorityMedium

type PriorityConfig struct {
	ComputeUnits uint32 // Number of compute units
	PriorityFee  uint64 // Priority fee in micro-lamports per compute unit
}

var priorityProfiles = map[PriorityLevel]PriorityConfig{
	PriorityLow: {
		ComputeUnits: 200_000,
		PriorityFee:  1_000,
	},
	PriorityMedium: {
		ComputeUnits: 400_000,
		PriorityFee:  5_000,
	},
	PriorityHigh: {
		ComputeUnits: 800_000,
		PriorityFee:  10_000,
	},
	PriorityExtreme: {
		ComputeUnits: 1_000_000,
		PriorityFee:  50_000,
	},
}

// PriorityFee is a selected fee tier together with its derived amount in SOL.
type PriorityFee struct {
	Level PriorityLevel
	SOL   float64
}

// ParsePriorityLevel accepts only the enumerated tiers.
func ParsePriorityLevel(s string) (PriorityLevel, error) {
	level := PriorityLevel(s)
	if _, ok := priorityProfiles[level]; !ok {
		return "", fmt.Errorf("unknown priority level: %s", s)
	}
	return level, nil
}

// NewPriorityFee derives the SOL cost of a tier: units × µlamports / 1e6 / 1e9.
func NewPriorityFee(level PriorityLevel) (PriorityFee, error) {
	cfg, ok := priorityProfiles[level]
	if !ok {
		return PriorityFee{}, fmt.Errorf("unknown priority level: %s", level)
	}
	microLamports := decimal.NewFromInt(int64(cfg.ComputeUnits)).Mul(decimal.NewFromInt(int64(cfg.PriorityFee)))
	sol := microLamports.Shift(-15)
	return PriorityFee{Level: level, SOL: sol.InexactFloat64()}, nil
}

// MustPriorityFee is NewPriorityFee for the built-in tiers.
func MustPriorityFee(level PriorityLevel) PriorityFee {
	fee, err := NewPriorityFee(level)
	if err != nil {
		panic(err)
	}
	return fee
}

// Profile returns the compute budget behind a tier.
func (l PriorityLevel) Profile() (PriorityConfig, bool) {
	cfg, ok := priorityProfiles[l]
	return cfg, ok
}

// String renders the fee for display, e.g. "medium (0.000002 SOL)".
func (f PriorityFee) String() string {
	if f.Level == "" {
		return "none"
	}
	return fmt.Sprintf("%s (%s SOL)", f.Level, decimal.NewFromFloat(f.SOL).String())
}
