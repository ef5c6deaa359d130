package accrual

import (
	"math"
	"testing"

	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/frequency"
)

func TestEARMatchesCompoundingFormula(t *testing.T) {
	ear := EAR(dec("0.01"), 12)
	want := math.Pow(1.01, 12) - 1
	got, _ := ear.Float64()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("EAR(0.01, 12) = %v, want ~%v", got, want)
	}
}

func TestDRMatchesCompoundingFormula(t *testing.T) {
	dr := DR(dec("0.01"), 30)
	want := math.Pow(1.01, 1.0/30.0) - 1
	got, _ := dr.Float64()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("DR(0.01, 30) = %v, want ~%v", got, want)
	}
}

func TestPRIsIdentity(t *testing.T) {
	if !PR(dec("0.01")).Equal(dec("0.01")) {
		t.Fatalf("PR must return its input unchanged")
	}
}

func TestDRZeroDaysInPeriod(t *testing.T) {
	if !DR(dec("0.01"), 0).IsZero() {
		t.Fatalf("DR with zero days-in-period should return zero rather than divide by zero")
	}
}

func TestConvertRateActuarialMonthlyToAnnual(t *testing.T) {
	// A 1%-per-month actuarial rate compounds to ~12.68% annually.
	r, err := ConvertRate(dec("0.01"), frequency.OneMonth, frequency.OneYear, cashflow.InterestActuarial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := r.Float64()
	if got < 0.126 || got > 0.128 {
		t.Fatalf("ConvertRate(0.01, 1-month -> 1-year) = %v, want ~0.1268", got)
	}
}

func TestConvertRateSimpleScalesLinearly(t *testing.T) {
	r, err := ConvertRate(dec("0.01"), frequency.OneMonth, frequency.OneYear, cashflow.InterestSimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Equal(dec("0.12")) {
		t.Fatalf("simple-interest ConvertRate(0.01, 1-month -> 1-year) = %s, want 0.12", r)
	}
}

func TestConvertRateToContinuousAndBack(t *testing.T) {
	continuous, err := ConvertRate(dec("0.12"), frequency.OneYear, frequency.Continuous, cashflow.InterestActuarial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := ConvertRate(continuous, frequency.Continuous, frequency.OneYear, cashflow.InterestActuarial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := back.Float64()
	if math.Abs(got-0.12) > 1e-4 {
		t.Fatalf("round-tripping through continuous compounding = %v, want ~0.12", got)
	}
}

func TestRollingStatisticsRequiresFixedPeriodsPerYear(t *testing.T) {
	st := state{set: true, periodsPerYear: 0, rate: dec("0.12")}
	result := cashflow.NewBalanceResult()
	if err := rollingStatistics(&result, st, 30); err == nil {
		t.Fatalf("expected an error when periods-per-year is not fixed")
	}
}
