package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundingPrecision is the scale factor used to round ratios to two decimals.
const RoundingPrecision = 100

// moneyPlaces is the number of decimal places money is stored with.
const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// round rounds a float64 value to two decimal places using the package RoundingPrecision constant.
// This function is used throughout the service layer to ensure consistent rounding of ratios
// in API responses. Intermediate values are never rounded.
//
// The rounding uses the standard "round half up" approach via math.Round.
//
// Example:
//
//	round(123.456789)  // returns 123.46
//	round(0.005)       // returns 0.01
//	round(1.994)       // returns 1.99
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}

// percentage returns numerator / denominator × 100 rounded to two decimals, or 0 when the
// denominator is zero.
func percentage(numerator, denominator decimal.Decimal) float64 {
	if denominator.IsZero() {
		return 0
	}
	return round(numerator.Mul(hundred).Div(denominator).InexactFloat64())
}

// growthPercentage returns (current − base) / base × 100 rounded to two decimals, or 0 when
// base is zero.
func growthPercentage(current, base decimal.Decimal) float64 {
	return percentage(current.Sub(base), base)
}

// normaliseMoney removes accumulator artefacts from a summed amount.
// A value already representable at two decimals is returned unchanged.
func normaliseMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
