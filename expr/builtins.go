package expr

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/calendar"
	"github.com/amfn-io/amfn/daycount"
	"github.com/amfn-io/amfn/decimalx"
	"github.com/amfn-io/amfn/frequency"
)

// callBuiltin dispatches a resolved function name to its implementation.
// `if` is handled in evalCall directly (it needs short-circuit args).
func callBuiltin(name string, args []Value) (Value, error) {
	switch name {
	case "round":
		return builtinRound(args)
	case "abs":
		return builtinAbs(args)
	case "min":
		return builtinMinMax(args, true)
	case "max":
		return builtinMinMax(args, false)
	case "date":
		return builtinDate(args)
	case "date-diff":
		return builtinDateDiff(args)
	case "date-add":
		return builtinDateAdd(args)
	case "format":
		return builtinFormat(args)
	case "fv":
		return builtinFV(args)
	case "pv":
		return builtinPV(args)
	case "pmt":
		return builtinPMT(args)
	case "nper":
		return builtinNPER(args)
	case "rate":
		return builtinRATE(args)
	default:
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "unknown function %q", name)
	}
}

// builtinRound implements round(x, n, mode).
func builtinRound(args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "round() requires 3 arguments, got %d", len(args))
	}
	x, err := requireDecimal(args, 0, "round")
	if err != nil {
		return Value{}, err
	}
	n, err := requireDecimal(args, 1, "round")
	if err != nil {
		return Value{}, err
	}
	mode, err := requireString(args, 2, "round")
	if err != nil {
		return Value{}, err
	}
	return DecimalValue(decimalx.Round(x, int32(n.IntPart()), decimalx.RoundingMode(mode))), nil
}

func builtinAbs(args []Value) (Value, error) {
	x, err := requireDecimal(args, 0, "abs")
	if err != nil {
		return Value{}, err
	}
	return DecimalValue(x.Abs()), nil
}

func builtinMinMax(args []Value, wantMin bool) (Value, error) {
	if len(args) < 2 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "min/max require at least 2 arguments, got %d", len(args))
	}
	best, err := requireDecimal(args, 0, "min/max")
	if err != nil {
		return Value{}, err
	}
	for i := 1; i < len(args); i++ {
		v, err := requireDecimal(args, i, "min/max")
		if err != nil {
			return Value{}, err
		}
		if wantMin && v.LessThan(best) {
			best = v
		}
		if !wantMin && v.GreaterThan(best) {
			best = v
		}
	}
	return DecimalValue(best), nil
}

func builtinDate(args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "date() requires 3 arguments, got %d", len(args))
	}
	y, err := requireDecimal(args, 0, "date")
	if err != nil {
		return Value{}, err
	}
	m, err := requireDecimal(args, 1, "date")
	if err != nil {
		return Value{}, err
	}
	d, err := requireDecimal(args, 2, "date")
	if err != nil {
		return Value{}, err
	}
	return DateValue(calendar.New(int(y.IntPart()), time.Month(m.IntPart()), int(d.IntPart()))), nil
}

func builtinDateDiff(args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "date-diff() requires 3 arguments, got %d", len(args))
	}
	if args[0].Kind != KindDate || args[1].Kind != KindDate {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "date-diff() first two arguments must be dates")
	}
	basis, err := requireString(args, 2, "date-diff")
	if err != nil {
		return Value{}, err
	}
	frac, err := daycount.Fraction(daycount.Basis(basis), args[0].Date, args[1].Date, 12, 365)
	if err != nil {
		return Value{}, err
	}
	return DecimalValue(frac), nil
}

func builtinDateAdd(args []Value) (Value, error) {
	if len(args) != 5 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "date-add() requires 5 arguments, got %d", len(args))
	}
	if args[0].Kind != KindDate {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "date-add() first argument must be a date")
	}
	n, err := requireDecimal(args, 1, "date-add")
	if err != nil {
		return Value{}, err
	}
	freqStr, err := requireString(args, 2, "date-add")
	if err != nil {
		return Value{}, err
	}
	intervals, err := requireDecimal(args, 3, "date-add")
	if err != nil {
		return Value{}, err
	}
	if args[4].Kind != KindBool && args[4].Kind != KindDecimal {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "date-add() fifth argument (eom) must be boolean")
	}
	eom := args[4].Truthy()

	dates, err := frequency.Sequence(args[0].Date, frequency.Frequency(freqStr), int(intervals.IntPart()), int(n.IntPart()), eom)
	if err != nil {
		return Value{}, err
	}
	if len(dates) == 0 {
		return DateValue(args[0].Date), nil
	}
	return DateValue(dates[len(dates)-1]), nil
}

func builtinFormat(args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "format() requires 2 arguments, got %d", len(args))
	}
	x, err := requireDecimal(args, 0, "format")
	if err != nil {
		return Value{}, err
	}
	digitsStr, err := requireString(args, 1, "format")
	if err != nil {
		return Value{}, err
	}
	digits, parseErr := decimal.NewFromString(digitsStr)
	if parseErr != nil {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "format() spec %q must be a digit count", digitsStr)
	}
	return StringValue(x.StringFixed(int32(digits.IntPart()))), nil
}

// builtinFV/PV/PMT/NPER/RATE implement the single-period analytical TVM
// forms of spec §4.3, generalized from the corpus's finance.PV/FV/PMT
// (which operate on a single lump-sum cash flow, not an annuity stream) to
// decimal.Decimal so monetary precision is preserved end to end.

func builtinFV(args []Value) (Value, error) {
	rate, pv, nper, err := tvmArgs(args, "fv")
	if err != nil {
		return Value{}, err
	}
	factor := decimalx.Pow(decimal.NewFromInt(1).Add(rate), nper)
	return DecimalValue(pv.Mul(factor).Neg()), nil
}

func builtinPV(args []Value) (Value, error) {
	rate, fv, nper, err := tvmArgs(args, "pv")
	if err != nil {
		return Value{}, err
	}
	factor := decimalx.Pow(decimal.NewFromInt(1).Add(rate), nper)
	if factor.IsZero() {
		return Value{}, amfnerr.New(amfnerr.ExprArithError, "pv(): division by zero")
	}
	return DecimalValue(decimalx.DivGuarded(fv.Neg(), factor)), nil
}

func builtinPMT(args []Value) (Value, error) {
	rate, pv, nper, err := tvmArgs(args, "pmt")
	if err != nil {
		return Value{}, err
	}
	if rate.IsZero() {
		if nper.IsZero() {
			return Value{}, amfnerr.New(amfnerr.ExprArithError, "pmt(): nper must be non-zero")
		}
		return DecimalValue(decimalx.DivGuarded(pv.Neg(), nper)), nil
	}
	factor := decimalx.Pow(decimal.NewFromInt(1).Add(rate), nper)
	denom := decimal.NewFromInt(1).Sub(decimalx.DivGuarded(decimal.NewFromInt(1), factor))
	if denom.IsZero() {
		return Value{}, amfnerr.New(amfnerr.ExprArithError, "pmt(): degenerate rate/nper combination")
	}
	return DecimalValue(decimalx.DivGuarded(pv.Neg().Mul(rate), denom)), nil
}

func builtinNPER(args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "nper() requires 3 arguments, got %d", len(args))
	}
	rate, err := requireDecimal(args, 0, "nper")
	if err != nil {
		return Value{}, err
	}
	pv, err := requireDecimal(args, 1, "nper")
	if err != nil {
		return Value{}, err
	}
	pmt, err := requireDecimal(args, 2, "nper")
	if err != nil {
		return Value{}, err
	}
	if rate.IsZero() {
		if pmt.IsZero() {
			return Value{}, amfnerr.New(amfnerr.ExprArithError, "nper(): pmt must be non-zero when rate is zero")
		}
		return DecimalValue(decimalx.DivGuarded(pv.Neg(), pmt)), nil
	}
	ratio := decimalx.DivGuarded(pmt, pmt.Add(pv.Mul(rate)))
	rf, _ := ratio.Float64()
	r1f, _ := decimal.NewFromInt(1).Add(rate).Float64()
	if rf <= 0 || r1f <= 0 {
		return Value{}, amfnerr.New(amfnerr.ExprArithError, "nper(): no real solution for the given inputs")
	}
	n := math.Log(rf) / math.Log(r1f)
	return DecimalValue(decimal.NewFromFloat(n)), nil
}

func builtinRATE(args []Value) (Value, error) {
	if len(args) != 3 {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "rate() requires 3 arguments, got %d", len(args))
	}
	nper, err := requireDecimal(args, 0, "rate")
	if err != nil {
		return Value{}, err
	}
	pv, err := requireDecimal(args, 1, "rate")
	if err != nil {
		return Value{}, err
	}
	fv, err := requireDecimal(args, 2, "rate")
	if err != nil {
		return Value{}, err
	}
	if pv.IsZero() || nper.IsZero() {
		return Value{}, amfnerr.New(amfnerr.ExprArithError, "rate(): pv and nper must be non-zero")
	}
	ratio := decimalx.DivGuarded(fv.Neg(), pv)
	exponent := decimalx.DivGuarded(decimal.NewFromInt(1), nper)
	return DecimalValue(decimalx.Pow(ratio, exponent).Sub(decimal.NewFromInt(1))), nil
}

// tvmArgs extracts (rate, amount, nper) from the standard 3-argument TVM
// builtin call shape.
func tvmArgs(args []Value, fn string) (rate, amount, nper decimal.Decimal, err error) {
	if len(args) != 3 {
		return decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, amfnerr.New(amfnerr.ExprTypeError, "%s() requires 3 arguments, got %d", fn, len(args))
	}
	rate, err = requireDecimal(args, 0, fn)
	if err != nil {
		return
	}
	amount, err = requireDecimal(args, 1, fn)
	if err != nil {
		return
	}
	nper, err = requireDecimal(args, 2, fn)
	return
}
