// Package decimalx wraps github.com/shopspring/decimal with the fixed set of
// rounding modes the cashflow engine needs. Every monetary and rate field in
// the engine is a decimal.Decimal; none of this package's arithmetic ever
// touches a float64 except where a fractional exponent genuinely requires
// log/exp composition (Pow).
package decimalx

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundingMode is the closed set of rounding rules from the interest-change
// event's round-balance field.
type RoundingMode string

const (
	RoundNone     RoundingMode = "none"
	RoundBankers  RoundingMode = "bankers"
	RoundBiasUp   RoundingMode = "bias-up"
	RoundBiasDown RoundingMode = "bias-down"
	RoundUp       RoundingMode = "up"
	RoundTruncate RoundingMode = "truncate"
	RoundYes      RoundingMode = "yes" // legacy alias for bankers
	RoundNo       RoundingMode = "no"  // legacy alias for none
)

// normalize resolves the legacy yes/no aliases to their canonical mode.
// The schema documents yes/no as aliases of bankers/none (spec §9 Open
// Question); legacy fixtures are expected to produce identical output under
// either spelling, so normalization happens once, here, rather than at every
// call site.
func normalize(mode RoundingMode) RoundingMode {
	switch mode {
	case RoundYes:
		return RoundBankers
	case RoundNo:
		return RoundNone
	default:
		return mode
	}
}

// Round applies mode to d at the given number of decimal digits.
func Round(d decimal.Decimal, digits int32, mode RoundingMode) decimal.Decimal {
	switch normalize(mode) {
	case RoundNone:
		return d
	case RoundBankers:
		return d.RoundBank(digits)
	case RoundBiasUp:
		return roundBiasUp(d, digits)
	case RoundBiasDown:
		return roundBiasDown(d, digits)
	case RoundUp:
		return roundAwayFromZeroOnRemainder(d, digits)
	case RoundTruncate:
		return d.Truncate(digits)
	default:
		return d.RoundBank(digits)
	}
}

// roundBiasUp rounds half away from zero: 0.5 -> 1, -0.5 -> -1.
func roundBiasUp(d decimal.Decimal, digits int32) decimal.Decimal {
	if d.IsNegative() {
		return d.Neg().Round(digits).Neg()
	}
	return d.Round(digits)
}

// roundBiasDown rounds half toward zero: 0.5 -> 0, -0.5 -> 0, 1.5 -> 1.
// shopspring's Round already rounds half away from zero, so bias-down is
// implemented from the truncated remainder directly.
func roundBiasDown(d decimal.Decimal, digits int32) decimal.Decimal {
	truncated := d.Truncate(digits)
	remainder := d.Sub(truncated).Abs()
	half := decimal.New(5, -(digits + 1))
	if remainder.GreaterThan(half) {
		if d.IsNegative() {
			return truncated.Sub(decimal.New(1, -digits))
		}
		return truncated.Add(decimal.New(1, -digits))
	}
	return truncated
}

// roundAwayFromZeroOnRemainder rounds up in magnitude whenever any remainder
// exists at all, regardless of its size (ceiling for positives, floor for
// negatives).
func roundAwayFromZeroOnRemainder(d decimal.Decimal, digits int32) decimal.Decimal {
	truncated := d.Truncate(digits)
	if truncated.Equal(d) {
		return truncated
	}
	step := decimal.New(1, -digits)
	if d.IsNegative() {
		return truncated.Sub(step)
	}
	return truncated.Add(step)
}

// Pow raises base to a (possibly fractional) exponent, used for rate
// conversion between frequencies (spec §4.7). shopspring/decimal has no
// fractional-exponent primitive, so this composes through float64 log/exp —
// the same boundary the corpus itself crosses for Pow-style rate math
// (see GenerateAmortizationSchedule's use of math.Pow) — and rounds back
// into a decimal with a generous guard scale.
func Pow(base, exponent decimal.Decimal) decimal.Decimal {
	b, _ := base.Float64()
	e, _ := exponent.Float64()
	if b <= 0 {
		if e == 0 {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	}
	result := math.Pow(b, e)
	return decimal.NewFromFloatWithExponent(result, -MaxGuardScale)
}

// MaxGuardScale bounds the scale retained by operations (such as Pow and
// Div) that would otherwise produce a non-terminating decimal expansion.
const MaxGuardScale = 15

// DivGuarded divides with MaxGuardScale digits of guard precision, the
// div-with-a-maximum-scale operation spec §4.1 calls for.
func DivGuarded(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, MaxGuardScale)
}

// Exp computes e^x via float64, used by the continuous rate-conversion
// formula in §4.7 (e^{r·τ} - 1).
func Exp(x decimal.Decimal) decimal.Decimal {
	f, _ := x.Float64()
	return decimal.NewFromFloatWithExponent(math.Exp(f), -MaxGuardScale)
}

// Ln computes the natural logarithm of x via float64, the inverse Exp needs
// to convert an effective annual rate into a continuously-compounded one
// (spec §4.7).
func Ln(x decimal.Decimal) decimal.Decimal {
	f, _ := x.Float64()
	return decimal.NewFromFloatWithExponent(math.Log(f), -MaxGuardScale)
}
