package frequency

import (
	"testing"

	"github.com/amfn-io/amfn/calendar"
)

// TestMonthlyEOMCarry is scenario S5 from spec.md: anchor 2020-01-31,
// 1-month, intervals 1, periods 3, eom=true -> 2020-02-29, 03-31, 04-30.
func TestMonthlyEOMCarry(t *testing.T) {
	dates, err := Sequence(calendar.New(2020, 1, 31), OneMonth, 1, 3, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []calendar.Date{
		calendar.New(2020, 2, 29),
		calendar.New(2020, 3, 31),
		calendar.New(2020, 4, 30),
	}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("date[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

// TestMonotonicAndLength is property 3 from spec.md §8: strictly increasing
// dates of length `periods`.
func TestMonotonicAndLength(t *testing.T) {
	dates, err := Sequence(calendar.New(2020, 1, 1), OneMonth, 1, 360, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 360 {
		t.Fatalf("got %d dates, want 360", len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			t.Errorf("dates not strictly increasing at index %d: %s <= %s", i, dates[i], dates[i-1])
		}
	}
}

func TestZeroPeriodsEmpty(t *testing.T) {
	dates, err := Sequence(calendar.New(2020, 1, 1), OneMonth, 1, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 0 {
		t.Errorf("expected empty sequence for periods=0, got %d", len(dates))
	}
}

func TestContinuousDegenerate(t *testing.T) {
	anchor := calendar.New(2020, 1, 1)
	dates, err := Sequence(anchor, Continuous, 1, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 1 || !dates[0].Equal(anchor) {
		t.Errorf("continuous should collapse to a single anchor element, got %v", dates)
	}
}

func TestHalfMonthStep(t *testing.T) {
	dates, err := Sequence(calendar.New(2020, 1, 1), HalfMonth, 1, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if !dates[0].Equal(calendar.New(2020, 1, 16)) {
		t.Errorf("half-month step 1 = %s, want 2020-01-16", dates[0])
	}
}

func TestInvalidFrequency(t *testing.T) {
	_, err := Sequence(calendar.New(2020, 1, 1), Frequency("bogus"), 1, 1, false)
	if err == nil {
		t.Fatal("expected error for invalid frequency")
	}
}

func TestInvalidIntervals(t *testing.T) {
	_, err := Sequence(calendar.New(2020, 1, 1), OneMonth, 0, 1, false)
	if err == nil {
		t.Fatal("expected error for intervals < 1")
	}
}
