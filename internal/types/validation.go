// internal/types/validation.go
package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError reports which form field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

const (
	maxNumberLen = 40
	// decimal rescales to the smaller exponent on compare, so 1e999999999
	// would allocate a billion-digit integer
	maxExponent = 18
)

// ParseNumber parses a user supplied decimal. NaN, Inf, empty input and
// exponents outside ±18 are rejected.
func ParseNumber(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, invalid(field, "a value is required")
	}
	if len(s) > maxNumberLen {
		return decimal.Zero, invalid(field, "is too long")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid(field, "%q is not a number", s)
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, invalid(field, "%q is out of range", s)
	}
	return d, nil
}

// toFloat converts d, rejecting values a float64 cannot hold.
func toFloat(field string, d decimal.Decimal) (float64, error) {
	f := d.InexactFloat64()
	if !IsFinite(f) || (!d.IsZero() && f == 0) {
		return 0, invalid(field, "is out of range")
	}
	return f, nil
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParsePositive accepts a finite number strictly greater than zero.
func ParsePositive(field, raw string) (float64, error) {
	d, err := ParseNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, invalid(field, "must be greater than 0")
	}
	return toFloat(field, d)
}

// ParsePercent accepts a percentage in (0, 100].
func ParsePercent(field, raw string) (float64, error) {
	d, err := ParseNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, invalid(field, "must be greater than 0")
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return 0, invalid(field, "must be at most 100")
	}
	return toFloat(field, d)
}

// ParseBoundedInt accepts a whole number in [min, max].
func ParseBoundedInt(field, raw string, min, max int64) (int, error) {
	d, err := ParseNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, invalid(field, "must be a whole number")
	}
	if d.LessThan(decimal.NewFromInt(min)) || d.GreaterThan(decimal.NewFromInt(max)) {
		return 0, invalid(field, "must be between %d and %d", min, max)
	}
	return int(d.IntPart()), nil
}

// ParseRange accepts a number in [min, max].
func ParseRange(field, raw string, min, max float64) (float64, error) {
	d, err := ParseNumber(field, raw)
	if err != nil {
		return 0, err
	}
	if d.LessThan(decimal.NewFromFloat(min)) || d.GreaterThan(decimal.NewFromFloat(max)) {
		return 0, invalid(field, "must be between %s and %s",
			decimal.NewFromFloat(min).String(), decimal.NewFromFloat(max).String())
	}
	return toFloat(field, d)
}
