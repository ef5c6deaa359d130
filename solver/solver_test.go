package solver

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// linear simulates a pipeline whose observed statistic is an affine function
// of the candidate unknown, e.g. a payment amount driving an ending balance.
func linear(slope, intercept decimal.Decimal) EvalFunc {
	return func(x decimal.Decimal) (decimal.Decimal, error) {
		return x.Mul(slope).Add(intercept), nil
	}
}

func TestSolveConvergesOnLinearFunction(t *testing.T) {
	// observed = 2x - 10, target 0 => x = 5
	result, err := Solve(linear(dec("2"), dec("-10")), dec("0"), dec("10"), dec("0"), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, _ := result.X.Float64()
	if f < 4.999 || f > 5.001 {
		t.Fatalf("Solve x = %v, want ~5", f)
	}
}

func TestSolveConvergesOnNonlinearFunction(t *testing.T) {
	// observed = x^2, target 49 => x = 7 (starting inside the positive branch)
	f := func(x decimal.Decimal) (decimal.Decimal, error) {
		return x.Mul(x), nil
	}
	result, err := Solve(f, dec("5"), dec("9"), dec("49"), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := result.X.Float64()
	if got < 6.99 || got > 7.01 {
		t.Fatalf("Solve x = %v, want ~7", got)
	}
}

func TestSolveImmediateConvergenceAtX0(t *testing.T) {
	result, err := Solve(linear(dec("2"), dec("-10")), dec("5"), dec("6"), dec("0"), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Iterations != 0 {
		t.Fatalf("Iterations = %d, want 0 when x0 is already the root", result.Iterations)
	}
}

func TestSolveTargetUnreachableOnFlatFunction(t *testing.T) {
	flat := func(x decimal.Decimal) (decimal.Decimal, error) {
		return dec("3"), nil
	}
	_, err := Solve(flat, dec("0"), dec("1"), dec("100"), 4)
	if !amfnerr.Is(err, amfnerr.SolverTargetUnreachable) {
		t.Fatalf("expected SolverTargetUnreachable, got %v", err)
	}
}

func TestSolveIntegerPicksSmallerResidual(t *testing.T) {
	// observed = x, target 4.6 -> relaxed root is 4.6; ceil(5) beats floor(4).
	result, err := SolveInteger(linear(dec("1"), dec("0")), dec("0"), dec("10"), dec("4.6"), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.X.Equal(dec("5")) {
		t.Fatalf("SolveInteger x = %s, want 5 (ceil has the smaller residual)", result.X)
	}
}

func TestSolveIntegerPicksFloorWhenCloser(t *testing.T) {
	result, err := SolveInteger(linear(dec("1"), dec("0")), dec("0"), dec("10"), dec("4.2"), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.X.Equal(dec("4")) {
		t.Fatalf("SolveInteger x = %s, want 4 (floor has the smaller residual)", result.X)
	}
}

func TestSolveErrorPropagatesFromEvalFunc(t *testing.T) {
	failing := func(x decimal.Decimal) (decimal.Decimal, error) {
		return decimal.Decimal{}, amfnerr.New(amfnerr.ExprArithError, "boom")
	}
	_, err := Solve(failing, dec("0"), dec("1"), dec("0"), 4)
	if !amfnerr.Is(err, amfnerr.ExprArithError) {
		t.Fatalf("expected ExprArithError to propagate, got %v", err)
	}
}
