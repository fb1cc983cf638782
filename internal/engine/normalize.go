package engine

import (
	"math"
	"strings"
)

// Mass conversion factors to kilograms.
const (
	gramsToKg  = 0.001
	kgToKg     = 1.0
	tonsToKg   = 1000.0
	poundsToKg = 0.453592
)

// massUnitFactor returns the conversion factor to kilograms for a unit
// string. Matching is case-insensitive and accepts CO2e-suffixed variants.
func massUnitFactor(unit string) (float64, bool) {
	switch strings.ToLower(unit) {
	case "g", "gco2e":
		return gramsToKg, true
	case "kg", "kgco2e":
		return kgToKg, true
	case "t", "tco2e":
		return tonsToKg, true
	case "lb", "lbco2e":
		return poundsToKg, true
	default:
		return 0, false
	}
}

// NormalizeToKg converts an emission mass from the given unit to kilograms.
// Supported units are g, kg, t, lb and their CO2e-suffixed variants,
// case-insensitive.
//
// Returns ErrNegativeValue for negative input, ErrInvalidUnit for an
// unrecognized unit, and ErrCalculationOverflow for Inf/NaN input or an
// overflowing conversion.
func NormalizeToKg(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, ok := massUnitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}
	return result, nil
}

// IsRecognizedUnit reports whether unit is a supported mass unit.
func IsRecognizedUnit(unit string) bool {
	_, ok := massUnitFactor(unit)
	return ok
}

// safeRatio divides a by b, returning 0 when the denominator is zero.
// Ratios in summaries and scores must never surface NaN or Inf.
func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// safePercent returns part/whole expressed as a percentage, 0 when whole
// is zero.
func safePercent(part, whole float64) float64 {
	return safeRatio(part, whole) * 100
}

// roundToIncrement rounds value to the nearest multiple of increment.
func roundToIncrement(value, increment float64) float64 {
	if increment <= 0 {
		return value
	}
	return math.Round(value/increment) * increment
}
