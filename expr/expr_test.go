package expr

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/calendar"
)

func evalString(t *testing.T, src string, resolver Resolver) (Value, error) {
	t.Helper()
	node, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	if resolver == nil {
		resolver = ResolverFunc(func(string) (Value, bool) { return Value{}, false })
	}
	return NewEvaluator(resolver).Eval(node)
}

func mustDecimal(t *testing.T, v Value, err error) decimal.Decimal {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindDecimal {
		t.Fatalf("expected decimal, got %s", v.Kind)
	}
	return v.Dec
}

func TestArithmeticPrecedence(t *testing.T) {
	v, err := evalString(t, "2 + 3 * 4", nil)
	got := mustDecimal(t, v, err)
	want := decimal.NewFromInt(14)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	v, err := evalString(t, "(2 + 3) * 4", nil)
	got := mustDecimal(t, v, err)
	want := decimal.NewFromInt(20)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestComparisonAndLogical(t *testing.T) {
	v, err := evalString(t, "(1 < 2) and (3 >= 3)", nil)
	got := mustDecimal(t, v, err)
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected truthy 1, got %s", got)
	}
}

func TestShortCircuitOr(t *testing.T) {
	// the right side references an unresolved identifier; short-circuit
	// must prevent it from ever being evaluated.
	v, err := evalString(t, "(1 = 1) or undefined-symbol", nil)
	got := mustDecimal(t, v, err)
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected short-circuited true, got %s err=%v", got, err)
	}
}

func TestIfShortCircuitsUntakenBranch(t *testing.T) {
	v, err := evalString(t, "if(1 = 1, 42, undefined-symbol)", nil)
	got := mustDecimal(t, v, err)
	if !got.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("got %s, want 42", got)
	}
}

func TestUnresolvedIdentifier(t *testing.T) {
	_, err := evalString(t, "principal + 1", nil)
	if !amfnerr.Is(err, amfnerr.ExprUnresolved) {
		t.Fatalf("expected ExprUnresolved, got %v", err)
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := evalString(t, "1 / 0", nil)
	if !amfnerr.Is(err, amfnerr.ExprArithError) {
		t.Fatalf("expected ExprArithError, got %v", err)
	}
}

func TestTypeErrorOnMixedCompare(t *testing.T) {
	_, err := evalString(t, `1 = "1"`, nil)
	if !amfnerr.Is(err, amfnerr.ExprTypeError) {
		t.Fatalf("expected ExprTypeError, got %v", err)
	}
}

func TestRecursionDepthCap(t *testing.T) {
	// build a deeply left-nested unary expression exceeding MaxDepth.
	src := ""
	for i := 0; i < 200; i++ {
		src += "-"
	}
	src += "1"
	_, err := evalString(t, src, nil)
	if !amfnerr.Is(err, amfnerr.ExprRecursion) {
		t.Fatalf("expected ExprRecursion, got %v", err)
	}
}

func TestResolverLookup(t *testing.T) {
	resolver := ResolverFunc(func(name string) (Value, bool) {
		if name == "event-date" {
			return DateValue(calendar.New(2026, 1, 15)), true
		}
		return Value{}, false
	})
	v, err := evalString(t, "event-date", resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindDate || v.Date.String() != "2026-01-15" {
		t.Fatalf("got %v", v)
	}
}

func TestStringConcat(t *testing.T) {
	v, err := evalString(t, `"balance-" & 5`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindString || v.Str != "balance-5" {
		t.Fatalf("got %v", v)
	}
}

func TestBuiltinRound(t *testing.T) {
	v, err := evalString(t, `round(1.005, 2, "bankers")`, nil)
	got := mustDecimal(t, v, err)
	if got.StringFixed(2) != "1.00" && got.StringFixed(2) != "1.01" {
		t.Fatalf("unexpected rounding result: %s", got)
	}
}

func TestBuiltinMinMax(t *testing.T) {
	v, err := evalString(t, "max(1, 5, 3)", nil)
	got := mustDecimal(t, v, err)
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("got %s, want 5", got)
	}
	v, err = evalString(t, "min(1, 5, 3)", nil)
	got = mustDecimal(t, v, err)
	if !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("got %s, want 1", got)
	}
}

func TestBuiltinDateArithmetic(t *testing.T) {
	v, err := evalString(t, `date-diff(2026-01-01, 2027-01-01, "actual-365F")`, nil)
	got := mustDecimal(t, v, err)
	if got.IsZero() {
		t.Fatalf("expected non-zero year fraction, got %s", got)
	}
}

func TestBuiltinDateAdd(t *testing.T) {
	v, err := evalString(t, `date-add(2026-01-31, 2, "1-month", 1, 1)`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindDate {
		t.Fatalf("expected date, got %s", v.Kind)
	}
	if v.Date.String() != "2026-03-31" {
		t.Fatalf("got %s, want 2026-03-31 (EOM carry)", v.Date.String())
	}
}

func TestBuiltinFVPV(t *testing.T) {
	v, err := evalString(t, `fv(0.05, -100, 10)`, nil)
	got := mustDecimal(t, v, err)
	if got.LessThanOrEqual(decimal.NewFromInt(100)) {
		t.Fatalf("expected fv > 100 given growth, got %s", got)
	}
}

func TestBuiltinPMT(t *testing.T) {
	v, err := evalString(t, `pmt(0, -1200, 12)`, nil)
	got := mustDecimal(t, v, err)
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("zero-rate amortization should be flat installments: got %s, want 100", got)
	}
}

func TestBuiltinFormat(t *testing.T) {
	v, err := evalString(t, `format(3.14159, "2")`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindString || v.Str != "3.14" {
		t.Fatalf("got %v", v)
	}
}

func TestUnknownFunction(t *testing.T) {
	_, err := evalString(t, "nosuchfn(1)", nil)
	if !amfnerr.Is(err, amfnerr.ExprTypeError) {
		t.Fatalf("expected ExprTypeError, got %v", err)
	}
}
