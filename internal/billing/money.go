// Package billing holds the shared pricing, stock-availability and payment
// arithmetic used by every sale surface (direct sales, pending sales, drafts).
// All functions are pure and total: malformed numeric input is coerced to zero
// rather than raising an error.
package billing

import (
	"math"
	"strconv"
	"strings"
)

// ParseMoney parses a user-entered money value. Thousands separators are
// stripped, and anything that does not parse to a finite number yields 0.
func ParseMoney(raw string) float64 {
	value, ok := parseFinite(raw)
	if !ok {
		return 0
	}
	return value
}

// parseFinite reports whether raw holds a finite number, after stripping
// thousands separators. Callers that need to distinguish "absent" from
// "zero" use the bool.
func parseFinite(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundMoney rounds to the nearest whole currency unit, half away from zero.
// Percent discounts are always rounded to whole units, never fractional.
func RoundMoney(value float64) float64 {
	return math.Round(value)
}

// sanitize coerces NaN and infinities to 0 so downstream arithmetic stays
// well-defined for any input.
func sanitize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
