// Package daycount implements the eight day-count bases of spec §4.1,
// each producing a year-fraction between two dates under its own
// numerator/denominator rule. Grounded on the corpus's YearFraction helper
// (utils.YearFraction, ACT/360 and ACT/365F), generalized to the full basis
// set and promoted from float64 to decimal.Decimal for exactness.
package daycount

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/calendar"
)

// Basis is the closed set of day-count conventions from spec §3.
type Basis string

const (
	Periodic      Basis = "periodic"
	Actual        Basis = "actual"
	ActualActual  Basis = "actual-actual"
	Actual365L    Basis = "actual-365L"
	Actual365F    Basis = "actual-365F"
	Thirty        Basis = "30"
	ThirtyE       Basis = "30E"
	ThirtyEPlus   Basis = "30EP"
)

// Valid reports whether b is one of the eight supported bases.
func Valid(b Basis) bool {
	switch b {
	case Periodic, Actual, ActualActual, Actual365L, Actual365F, Thirty, ThirtyE, ThirtyEPlus:
		return true
	}
	return false
}

// Fraction computes the day-fraction between d1 and d2 (d1 <= d2) under
// basis b. periodsPerYear and daysInYear parameterize the periodic and
// actual bases respectively (spec table in §4.1).
func Fraction(b Basis, d1, d2 calendar.Date, periodsPerYear int, daysInYear int) (decimal.Decimal, error) {
	if d2.Before(d1) {
		return decimal.Zero, amfnerr.New(amfnerr.DateInvalid, "day-count span must have d1 <= d2, got %s > %s", d1, d2)
	}
	switch b {
	case Periodic:
		if periodsPerYear <= 0 {
			return decimal.Zero, amfnerr.New(amfnerr.DayCountUnsupported, "periodic basis requires a positive periods-in-year")
		}
		return decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(periodsPerYear))), nil

	case Actual:
		days := calendar.DaysBetween(d1, d2)
		dy := daysInYear
		if dy <= 0 {
			dy = 365
		}
		return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(dy))), nil

	case Actual365F:
		days := calendar.DaysBetween(d1, d2)
		return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(365)), nil

	case Actual365L:
		days := calendar.DaysBetween(d1, d2)
		dy := 365
		if calendar.ContainsFeb29(d1, d2) {
			dy = 366
		}
		return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(dy))), nil

	case ActualActual:
		return actualActualFraction(d1, d2), nil

	case Thirty:
		return thirty360(d1, d2, false), nil

	case ThirtyE:
		return thirty360(d1, d2, true), nil

	case ThirtyEPlus:
		return thirty360EPlus(d1, d2), nil

	default:
		return decimal.Zero, amfnerr.New(amfnerr.DayCountUnsupported, "unsupported day-count basis %q", b)
	}
}

// actualActualFraction splits the span across leap-year boundaries, using
// 366 as the denominator for the portion of the span that falls in a leap
// year and 365 for the portion that does not (spec §4.1).
func actualActualFraction(d1, d2 calendar.Date) decimal.Decimal {
	total := decimal.Zero
	cursor := d1
	for cursor.Year() < d2.Year() {
		yearEnd := calendar.New(cursor.Year()+1, 1, 1)
		days := calendar.DaysBetween(cursor, yearEnd)
		denom := 365
		if calendar.IsLeapYear(cursor.Year()) {
			denom = 366
		}
		total = total.Add(decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(denom))))
		cursor = yearEnd
	}
	days := calendar.DaysBetween(cursor, d2)
	denom := 365
	if calendar.IsLeapYear(cursor.Year()) {
		denom = 366
	}
	total = total.Add(decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(int64(denom))))
	return total
}

// thirty360 implements US 30/360 (european=false) and European 30E/360 (european=true).
func thirty360(d1, d2 calendar.Date, european bool) decimal.Decimal {
	y1, m1, day1 := d1.Year(), int(d1.Month()), d1.Day()
	y2, m2, day2 := d2.Year(), int(d2.Month()), d2.Day()

	if european {
		if day1 == 31 {
			day1 = 30
		}
		if day2 == 31 {
			day2 = 30
		}
	} else {
		if day1 == 31 {
			day1 = 30
		}
		if day2 == 31 && day1 == 30 {
			day2 = 30
		}
	}

	days := (y2-y1)*360 + (m2-m1)*30 + (day2 - day1)
	return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(360))
}

// thirty360EPlus is 30E/360 with the additional month-end adjustment: if d2
// lands on the last day of February, it is moved to March 1 of the same year
// before the European day clamp is applied (spec §4.1, "30E+ with month-end
// adjustments").
func thirty360EPlus(d1, d2 calendar.Date) decimal.Decimal {
	adjustedD2 := d2
	if d2.Month() == 2 && d2.IsEndOfMonth() {
		adjustedD2 = calendar.New(d2.Year(), 3, 1)
	}
	return thirty360(d1, adjustedD2, true)
}
