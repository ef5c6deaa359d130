package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/frequency"
	"github.com/amfn-io/amfn/fx"
	"github.com/amfn-io/amfn/solver"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TestEvaluateSimpleInterestLoan exercises S2: a single principal draw and,
// 365 days later, a principal payoff, with a simple-interest accrual in
// effect throughout.
func TestEvaluateSimpleInterestLoan(t *testing.T) {
	events := cashflow.NewEventList([]cashflow.Event{
		{
			EventDate: "2026-01-01",
			Frequency: frequency.OneMonth,
			Intervals: 1,
			Extension: cashflow.InterestChange{
				Rate:               dec("0.10"),
				DayCountBasis:      "actual-365F",
				InterestMethod:     cashflow.InterestSimple,
				RoundDecimalDigits: 2,
				RoundBalance:       "truncate",
			},
		},
		{
			EventDate:  "2026-01-01",
			EventValue: "1000.00",
			Frequency:  frequency.OneMonth,
			Intervals:  1,
			Extension:  cashflow.PrincipalChange{PrincipalType: cashflow.PrincipalIncrease},
		},
		{
			EventDate:  "2027-01-01",
			EventValue: "1000.00",
			Frequency:  frequency.OneMonth,
			Intervals:  1,
			Extension:  cashflow.PrincipalChange{PrincipalType: cashflow.PrincipalDecrease},
		},
	})

	result, err := Evaluate(Cashflow{Events: events})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Balance.FinalBalance.IsZero() {
		t.Fatalf("FinalBalance = %s, want 0.00", result.Balance.FinalBalance)
	}
	if result.Balance.SLInterestTotal.IsZero() {
		t.Fatalf("expected simple interest to accrue over the year, got 0")
	}
	if len(result.Compressed) == 0 {
		t.Fatalf("expected at least one compressed run")
	}
}

func TestExpandStopsShortOfCompress(t *testing.T) {
	events := cashflow.NewEventList([]cashflow.Event{
		{
			EventDate:  "2026-01-01",
			EventValue: "500.00",
			Frequency:  frequency.OneMonth,
			Intervals:  1,
			Extension:  cashflow.PrincipalChange{PrincipalType: cashflow.PrincipalIncrease},
		},
	})
	elements, balance, err := Expand(Cashflow{Events: events})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 1 {
		t.Fatalf("len(elements) = %d, want 1", len(elements))
	}
	if !balance.FinalBalance.Equal(dec("500.00")) {
		t.Fatalf("FinalBalance = %s, want 500.00", balance.FinalBalance)
	}
}

func TestConvertTransitivePath(t *testing.T) {
	graph := fx.NewGraph([]fx.Pair{
		{From: "USD", To: "EUR", Value: dec("0.9")},
		{From: "EUR", To: "JPY", Value: dec("150")},
	})
	got, err := Convert(graph, dec("10"), "USD", "JPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("1350")) {
		t.Fatalf("Convert(10 USD -> JPY) = %s, want 1350", got)
	}
}

// TestSolveUnknownValueZeroesFinalBalance solves for the principal-decrease
// event's value that exactly offsets the initial increase, observing a
// statistic-value marker sampled at the final balance.
func TestSolveUnknownValueZeroesFinalBalance(t *testing.T) {
	events := cashflow.NewEventList([]cashflow.Event{
		{
			EventDate:  "2026-01-01",
			EventValue: "1000.00",
			Frequency:  frequency.OneMonth,
			Intervals:  1,
			Extension:  cashflow.PrincipalChange{PrincipalType: cashflow.PrincipalIncrease},
		},
		{
			EventDate:  "2026-02-01",
			EventValue: "1.00",
			Frequency:  frequency.OneMonth,
			Intervals:  1,
			Extension:  cashflow.PrincipalChange{PrincipalType: cashflow.PrincipalDecrease},
		},
		{
			EventDate: "2026-02-01",
			Frequency: frequency.OneMonth,
			Intervals: 1,
			Extension: cashflow.StatisticValue{Name: "final-balance", Final: true},
		},
	})
	target := solver.Target{
		Kind:             solver.UnknownValue,
		EventOriginIndex: 1,
		StatisticName:    "final-balance",
		TargetAmount:     dec("0"),
		DecimalDigits:    2,
		InitialGuess:     dec("500"),
		SecondGuess:      dec("1500"),
	}

	result, err := Solve(Cashflow{Events: events}, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, _ := result.X.Float64()
	if f < 999.99 || f > 1000.01 {
		t.Fatalf("Solve unknown value = %v, want ~1000.00", f)
	}
}
