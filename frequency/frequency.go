// Package frequency maps a (date, frequency, intervals, periods, eom) tuple
// to a sequence of dates — the period stepping engine of spec §4.2.
package frequency

import (
	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/calendar"
)

// Frequency is the closed set of calendar step sizes from spec §3.
type Frequency string

const (
	OneYear    Frequency = "1-year"
	SixMonths  Frequency = "6-months"
	FourMonths Frequency = "4-months"
	ThreeMonths Frequency = "3-months"
	TwoMonths  Frequency = "2-months"
	OneMonth   Frequency = "1-month"
	HalfMonth  Frequency = "half-month"
	FourWeeks  Frequency = "4-weeks"
	TwoWeeks   Frequency = "2-weeks"
	OneWeek    Frequency = "1-week"
	OneDay     Frequency = "1-day"
	Continuous Frequency = "continuous"
)

// PeriodsPerYear returns the number of periods of f that make up one year,
// used by the periodic day-count basis and by EAR/PR statistics (spec §4.7).
// Continuous has no fixed periods-per-year; callers must special-case it.
func PeriodsPerYear(f Frequency) (int, error) {
	switch f {
	case OneYear:
		return 1, nil
	case SixMonths:
		return 2, nil
	case FourMonths:
		return 3, nil
	case ThreeMonths:
		return 4, nil
	case TwoMonths:
		return 6, nil
	case OneMonth:
		return 12, nil
	case HalfMonth:
		return 24, nil
	case FourWeeks:
		return 13, nil
	case TwoWeeks:
		return 26, nil
	case OneWeek:
		return 52, nil
	case OneDay:
		return 365, nil
	default:
		return 0, amfnerr.New(amfnerr.FrequencyInvalid, "frequency %q has no fixed periods-per-year", f)
	}
}

// Valid reports whether f is one of the twelve supported frequencies.
func Valid(f Frequency) bool {
	switch f {
	case OneYear, SixMonths, FourMonths, ThreeMonths, TwoMonths, OneMonth,
		HalfMonth, FourWeeks, TwoWeeks, OneWeek, OneDay, Continuous:
		return true
	}
	return false
}

// Sequence produces d_1 ... d_n where d_i = step(anchor, f, intervals*i, eom),
// per spec §4.2. continuous collapses to a single degenerate step (used only
// by interest accrual, which treats it analytically over the span to the
// next event). periods <= 0 returns an empty sequence; callers handle the
// "zero-period events emit exactly one element at the anchor date" edge
// case (spec §4.6) themselves, since that is an expander concern, not a
// frequency one.
func Sequence(anchor calendar.Date, f Frequency, intervals, periods int, eom bool) ([]calendar.Date, error) {
	if !Valid(f) {
		return nil, amfnerr.New(amfnerr.FrequencyInvalid, "unknown frequency %q", f)
	}
	if intervals < 1 {
		return nil, amfnerr.New(amfnerr.FrequencyInvalid, "intervals must be >= 1, got %d", intervals)
	}
	if periods <= 0 {
		return nil, nil
	}
	if f == Continuous {
		return []calendar.Date{anchor}, nil
	}

	dates := make([]calendar.Date, periods)
	for i := 1; i <= periods; i++ {
		step := intervals * i
		dates[i-1] = stepDate(anchor, f, step, eom)
	}
	return dates, nil
}

// stepDate computes a single d_i = step(anchor, f, n, eom).
func stepDate(anchor calendar.Date, f Frequency, n int, eom bool) calendar.Date {
	switch f {
	case OneYear:
		return anchor.AddMonths(12*n, eom)
	case SixMonths:
		return anchor.AddMonths(6*n, eom)
	case FourMonths:
		return anchor.AddMonths(4*n, eom)
	case ThreeMonths:
		return anchor.AddMonths(3*n, eom)
	case TwoMonths:
		return anchor.AddMonths(2*n, eom)
	case OneMonth:
		return anchor.AddMonths(n, eom)
	case HalfMonth:
		return anchor.AddDays(15 * n)
	case FourWeeks:
		return anchor.AddWeeks(4 * n)
	case TwoWeeks:
		return anchor.AddWeeks(2 * n)
	case OneWeek:
		return anchor.AddWeeks(n)
	case OneDay:
		return anchor.AddDays(n)
	default:
		return anchor
	}
}
