// Package calendar provides the civil-date primitives the engine needs:
// a UTC-midnight Date value type plus month/week/day arithmetic with
// end-of-month carry, in the idiom the corpus uses for loan-schedule date
// math (see utils.AddMonth / utils.DateParser).
package calendar

import "time"

// Date is a calendar date with no time-of-day or time-zone component. It is
// always normalized to UTC midnight so that comparisons and arithmetic are
// never perturbed by daylight-saving transitions.
type Date struct {
	t time.Time
}

// New constructs a Date from a year/month/day triple.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime normalizes an arbitrary time.Time to a civil Date.
func FromTime(t time.Time) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Parse converts a YYYY-MM-DD string to a Date.
func Parse(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// Time returns the underlying UTC-midnight time.Time.
func (d Date) Time() time.Time { return d.t }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// Year, Month, Day return the civil components.
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Before, After, Equal compare two dates.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// IsEndOfMonth reports whether d is the last calendar day of its month.
func (d Date) IsEndOfMonth() bool {
	return d.t.AddDate(0, 0, 1).Month() != d.t.Month()
}

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	firstOfNext := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Date{t: firstOfNext.AddDate(0, 0, -1)}
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// AddWeeks returns d shifted by n weeks.
func (d Date) AddWeeks(n int) Date { return d.AddDays(7 * n) }

// AddMonths returns d shifted by n months using Excel's EDATE-style
// clamping (Jan 31 + 1 month = Feb 28/29, not Mar 3), following the
// corpus's AddMonth helper. When eom is true and d is already a month-end,
// the result snaps to the end of the target month instead of clamping to
// d's day-of-month (the EOM carry rule of spec §4.2).
func (d Date) AddMonths(n int, eom bool) Date {
	if eom && d.IsEndOfMonth() {
		firstOfTarget := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
		firstOfFollowing := firstOfTarget.AddDate(0, 1, 0)
		return Date{t: firstOfFollowing.AddDate(0, 0, -1)}
	}
	return Date{t: clampingAddMonths(d.t, n)}
}

// clampingAddMonths adds n months to t without letting Go's normalizing
// AddDate overflow into the following month for short months (e.g.
// Jan 31 + 1 month should land on Feb 28, not Mar 3).
func clampingAddMonths(t time.Time, n int) time.Time {
	firstOfThis := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	firstOfTarget := firstOfThis.AddDate(0, n, 0)
	lastDayOfTarget := firstOfTarget.AddDate(0, 1, 0).AddDate(0, 0, -1).Day()
	day := t.Day()
	if day > lastDayOfTarget {
		day = lastDayOfTarget
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the actual number of calendar days between d1 and d2
// (d2 - d1), which may be negative.
func DaysBetween(d1, d2 Date) int {
	return int(d2.t.Sub(d1.t).Hours() / 24)
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ContainsFeb29 reports whether the half-open span [d1, d2) contains
// February 29th of any year, used by the actual-365L day-count basis.
func ContainsFeb29(d1, d2 Date) bool {
	for y := d1.Year(); y <= d2.Year(); y++ {
		if !IsLeapYear(y) {
			continue
		}
		feb29 := New(y, 2, 29)
		if !feb29.Before(d1) && feb29.Before(d2) {
			return true
		}
	}
	return false
}
