// Package solver implements the secant-with-bracketing-fallback root finder
// spec §4.9 calls for: given an evaluation function that re-runs the
// expand/accrual/compress pipeline for a candidate unknown and reports the
// statistic or current-value it produces, find the candidate that drives
// that observation to a target amount.
//
// The package knows nothing about cashflows, events, or symbol tables — it
// solves f(x) = target for a caller-supplied f. The cashflow orchestrator is
// responsible for building f as a closure that substitutes the candidate
// into the per-evaluation symbol table under the reserved name @target and
// re-runs C6 (expand), C7 (accrual), and C8 (compress).
package solver

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
)

// UnknownKind is the closed set of things spec §4.9 lets a solve target.
type UnknownKind string

const (
	UnknownValue   UnknownKind = "value"   // an event's unknown value
	UnknownRate    UnknownKind = "rate"    // the rate on a named interest-change
	UnknownPeriods UnknownKind = "periods" // the periods count on a named event
)

// MaxIterations is the hard iteration cap spec §4.9 sets.
const MaxIterations = 64

// EvalFunc evaluates the pipeline with candidate substituted for the unknown
// and returns the resulting statistic-value or current-value observation.
type EvalFunc func(candidate decimal.Decimal) (decimal.Decimal, error)

// Result is the outcome of a successful solve.
type Result struct {
	X          decimal.Decimal
	Observed   decimal.Decimal
	Residual   decimal.Decimal
	Iterations int
}

// Solve finds x such that eval(x) is within tolerance of target, starting
// from the two initial guesses x0 and x1 (spec §4.9's secant iteration).
// digits sets the convergence tolerance: ε = 10^-digits, the same scale the
// result will eventually be rounded to.
//
// When two consecutive iterates produce residuals of opposite sign, they
// become the bracket. From then on a secant step that lands outside the most
// recent bracket, or a flat secant, is replaced by the bracket's midpoint
// rather than trusted unconditionally — the fallback the spec requires to
// keep the method from diverging when the secant slope briefly flattens.
func Solve(eval EvalFunc, x0, x1, target decimal.Decimal, digits int32) (Result, error) {
	epsilon := tolerance(digits)

	f0, err := residual(eval, x0, target)
	if err != nil {
		return Result{}, err
	}
	if f0.Abs().LessThan(epsilon) {
		return Result{X: x0, Observed: f0.Add(target), Residual: f0, Iterations: 0}, nil
	}

	f1, err := residual(eval, x1, target)
	if err != nil {
		return Result{}, err
	}

	xPrev, fPrev := x0, f0
	xCur, fCur := x1, f1
	bracketLo, bracketHi, bracketed := bracket(xPrev, fPrev, xCur, fCur)

	for iter := 1; iter <= MaxIterations; iter++ {
		if fCur.Abs().LessThan(epsilon) {
			return Result{X: xCur, Observed: fCur.Add(target), Residual: fCur, Iterations: iter}, nil
		}

		denom := fCur.Sub(fPrev)
		var xNext decimal.Decimal
		if denom.IsZero() {
			if !bracketed {
				return Result{}, amfnerr.New(amfnerr.SolverTargetUnreachable,
					"solver: residual stopped changing before reaching target (last residual %s)", fCur)
			}
			xNext = bracketLo.Add(bracketHi).Div(decimal.NewFromInt(2))
		} else {
			xNext = xCur.Sub(fCur.Mul(xCur.Sub(xPrev)).Div(denom))
			if bracketed && !within(xNext, bracketLo, bracketHi) {
				xNext = bracketLo.Add(bracketHi).Div(decimal.NewFromInt(2))
			}
		}

		if xNext.Sub(xCur).Abs().LessThan(delta(digits)) {
			fNext, err := residual(eval, xNext, target)
			if err != nil {
				return Result{}, err
			}
			return Result{X: xNext, Observed: fNext.Add(target), Residual: fNext, Iterations: iter}, nil
		}

		fNext, err := residual(eval, xNext, target)
		if err != nil {
			return Result{}, err
		}

		if lo, hi, ok := bracket(xCur, fCur, xNext, fNext); ok {
			bracketLo, bracketHi, bracketed = lo, hi, true
		}

		xPrev, fPrev = xCur, fCur
		xCur, fCur = xNext, fNext
	}

	return Result{}, amfnerr.New(amfnerr.SolverNoConvergence,
		"solver: did not converge after %d iterations (last residual %s)", MaxIterations, fCur)
}

// SolveInteger solves the continuous relaxation of eval, then evaluates
// floor(x) and ceil(x) directly and returns whichever has the smaller
// absolute residual — spec §4.9's rule for integer unknowns (a periods
// count).
func SolveInteger(eval EvalFunc, x0, x1, target decimal.Decimal, digits int32) (Result, error) {
	relaxed, err := Solve(eval, x0, x1, target, digits)
	if err != nil {
		return Result{}, err
	}

	floor := relaxed.X.Truncate(0)
	ceil := floor
	if !relaxed.X.Equal(floor) {
		ceil = floor.Add(decimal.NewFromInt(1))
	}

	floorObserved, err := eval(floor)
	if err != nil {
		return Result{}, err
	}
	floorResidual := floorObserved.Sub(target)

	if ceil.Equal(floor) {
		return Result{X: floor, Observed: floorObserved, Residual: floorResidual, Iterations: relaxed.Iterations}, nil
	}

	ceilObserved, err := eval(ceil)
	if err != nil {
		return Result{}, err
	}
	ceilResidual := ceilObserved.Sub(target)

	if ceilResidual.Abs().LessThan(floorResidual.Abs()) {
		return Result{X: ceil, Observed: ceilObserved, Residual: ceilResidual, Iterations: relaxed.Iterations}, nil
	}
	return Result{X: floor, Observed: floorObserved, Residual: floorResidual, Iterations: relaxed.Iterations}, nil
}

func residual(eval EvalFunc, x, target decimal.Decimal) (decimal.Decimal, error) {
	observed, err := eval(x)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return observed.Sub(target), nil
}

// bracket reports the [lo, hi] interval between a and b when their residuals
// have opposite sign (a genuine bracket of the root), else ok is false.
func bracket(a, fa, b, fb decimal.Decimal) (lo, hi decimal.Decimal, ok bool) {
	if fa.Sign() == 0 || fb.Sign() == 0 || fa.Sign() == fb.Sign() {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	if a.LessThan(b) {
		return a, b, true
	}
	return b, a, true
}

func within(x, lo, hi decimal.Decimal) bool {
	return !x.LessThan(lo) && !x.GreaterThan(hi)
}

// tolerance is ε, the residual magnitude below which the solve is considered
// converged, derived from digits per spec §4.9.
func tolerance(digits int32) decimal.Decimal {
	if digits < 0 {
		digits = 0
	}
	return decimal.New(1, -digits)
}

// delta is the secant step-size convergence threshold, one order tighter
// than ε so that a shrinking-step exit and a shrinking-residual exit agree
// on roughly the same candidate.
func delta(digits int32) decimal.Decimal {
	return decimal.New(1, -(digits + 1))
}
