package daycount

import (
	"testing"

	"github.com/amfn-io/amfn/calendar"
)

func TestActual365F(t *testing.T) {
	f, err := Fraction(Actual365F, calendar.New(2020, 1, 1), calendar.New(2021, 1, 1), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	fl, _ := f.Float64()
	if fl < 1.0 || fl > 1.003 {
		t.Errorf("Actual365F(2020-01-01, 2021-01-01) = %v, want ~1.0027", fl)
	}
}

func TestThirty360MonthEnd(t *testing.T) {
	f, err := Fraction(Thirty, calendar.New(2020, 1, 31), calendar.New(2020, 2, 28), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	// day1 clamps 31->30, day2 28 stays: (28-30) + 30 = 28 days -> 28/360
	fl, _ := f.Float64()
	if fl < 0.0777 || fl > 0.0779 {
		t.Errorf("Thirty(2020-01-31, 2020-02-28) = %v, want ~0.0778", fl)
	}
}

func TestPeriodicBasis(t *testing.T) {
	f, err := Fraction(Periodic, calendar.New(2020, 1, 1), calendar.New(2020, 2, 1), 12, 0)
	if err != nil {
		t.Fatal(err)
	}
	if f.String() != "0.083333333333333333" && f.Round(6).String() != "0.083333" {
		t.Errorf("periodic fraction with 12 periods/year = %s, want ~1/12", f)
	}
}

func TestD2BeforeD1Error(t *testing.T) {
	_, err := Fraction(Actual, calendar.New(2020, 2, 1), calendar.New(2020, 1, 1), 0, 365)
	if err == nil {
		t.Fatal("expected error for d2 < d1")
	}
}

func TestUnsupportedBasis(t *testing.T) {
	_, err := Fraction(Basis("nope"), calendar.New(2020, 1, 1), calendar.New(2020, 2, 1), 0, 0)
	if err == nil {
		t.Fatal("expected error for unsupported basis")
	}
}

func TestActualActualLeapSplit(t *testing.T) {
	// Span crossing into a leap year: ensure denominator switches.
	f, err := Fraction(ActualActual, calendar.New(2019, 7, 1), calendar.New(2020, 7, 1), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	fl, _ := f.Float64()
	// 184/365 + 182/366 = 1.00138...
	if fl < 1.0013 || fl > 1.0015 {
		t.Errorf("ActualActual(2019-07-01, 2020-07-01) = %v, want ~1.0014", fl)
	}
}
