// Package compress merges a fully expanded amortization list into a compact
// schedule of repeating runs, spec §4.8. A run is a maximal span of
// consecutive elements that share event-type, frequency, intervals,
// descriptor view, and extension identity, and whose per-period
// principal/interest delta stays constant throughout the run — exactly the
// shape a human reads as "$X principal / $Y interest, monthly, for N
// periods" rather than N separate lines.
package compress

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/calendar"
	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/frequency"
	"github.com/amfn-io/amfn/symbols"
)

// Element is one compressed record: a run collapsed to its start/end date
// span, period count, and the constant per-period principal/interest delta
// the run shares.
type Element struct {
	StartDate calendar.Date
	EndDate   calendar.Date
	Periods   int

	EventType string
	Frequency frequency.Frequency
	Intervals int

	PrincipalDelta decimal.Decimal
	InterestDelta  decimal.Decimal

	Extension   cashflow.Extension
	Descriptors []symbols.Descriptor
}

// Compress merges elements into maximal runs (spec §4.8). The input is
// assumed to already be in accrual order (Expand's output, walked by
// Accrue); Compress never reorders elements, only groups adjacent ones.
//
// Non-mergeable boundaries end a run: a rate change (any InterestChange
// field difference, including Rate itself), a descriptor change, a
// skip-mask gap (a jump in PeriodIndex, or a switch to a different
// originating event), a statistic-value emission, or a balance-rounding
// discontinuity (the per-element principal/interest delta no longer
// matches the run's established delta).
func Compress(elements []cashflow.Element) []Element {
	if len(elements) == 0 {
		return nil
	}

	var out []Element
	r := newRun(elements[0])

	for i := 1; i < len(elements); i++ {
		prev, cur := elements[i-1], elements[i]
		delta := elementDelta(cur)
		if r.accepts(prev, cur, delta) {
			r.extend(cur, delta)
			continue
		}
		out = append(out, r.close())
		r = newRun(cur)
	}
	out = append(out, r.close())
	return out
}

// run accumulates the elements seen so far for one compressed record.
type run struct {
	first, last cashflow.Element
	periods     int
	delta       periodDelta
	hasDelta    bool
}

// periodDelta is the per-element net principal movement and posted
// interest, the quantities spec §4.8 requires to stay constant across a run.
type periodDelta struct {
	principal decimal.Decimal
	interest  decimal.Decimal
}

func elementDelta(el cashflow.Element) periodDelta {
	return periodDelta{
		principal: el.PrincipalIncrease.Sub(el.PrincipalDecrease),
		interest:  el.Interest,
	}
}

func newRun(el cashflow.Element) *run {
	return &run{first: el, last: el, periods: 1, delta: elementDelta(el), hasDelta: true}
}

// accepts reports whether cur extends the run currently anchored at
// r.first, given that cur immediately follows prev in the element list.
func (r *run) accepts(prev, cur cashflow.Element, delta periodDelta) bool {
	if isStatistic(cur.Extension) || isStatistic(prev.Extension) {
		return false
	}
	if cur.EventType != r.first.EventType {
		return false
	}
	if cur.Frequency != r.first.Frequency || cur.Intervals != r.first.Intervals {
		return false
	}
	if !sameExtension(r.first.Extension, cur.Extension) {
		return false
	}
	if !sameDescriptors(r.first.Descriptors, cur.Descriptors) {
		return false
	}
	if cur.OriginIndex != prev.OriginIndex || cur.PeriodIndex != prev.PeriodIndex+1 {
		return false
	}
	if r.hasDelta && (!delta.principal.Equal(r.delta.principal) || !delta.interest.Equal(r.delta.interest)) {
		return false
	}
	return true
}

func (r *run) extend(el cashflow.Element, delta periodDelta) {
	r.last = el
	r.periods++
	r.delta = delta
	r.hasDelta = true
}

func (r *run) close() Element {
	return Element{
		StartDate:      r.first.Date,
		EndDate:        r.last.Date,
		Periods:        r.periods,
		EventType:      r.first.EventType,
		Frequency:      r.first.Frequency,
		Intervals:      r.first.Intervals,
		PrincipalDelta: r.delta.principal,
		InterestDelta:  r.delta.interest,
		Extension:      r.first.Extension,
		Descriptors:    r.first.Descriptors,
	}
}

func isStatistic(ext cashflow.Extension) bool {
	_, ok := ext.(cashflow.StatisticValue)
	return ok
}

// sameExtension reports whether a and b carry identical extension payloads.
// A StatisticValue extension never compares equal to anything, including
// another StatisticValue — every statistic emission is its own boundary.
func sameExtension(a, b cashflow.Extension) bool {
	switch av := a.(type) {
	case cashflow.PrincipalChange:
		bv, ok := b.(cashflow.PrincipalChange)
		return ok && av == bv
	case cashflow.InterestChange:
		bv, ok := b.(cashflow.InterestChange)
		return ok && av.Rate.Equal(bv.Rate) &&
			av.DayCountBasis == bv.DayCountBasis &&
			av.DaysInYear == bv.DaysInYear &&
			av.InterestMethod == bv.InterestMethod &&
			av.RoundBalance == bv.RoundBalance &&
			av.RoundDecimalDigits == bv.RoundDecimalDigits &&
			av.EffectiveFrequency == bv.EffectiveFrequency &&
			av.InterestFrequency == bv.InterestFrequency &&
			av.RollingStatistics == bv.RollingStatistics
	case cashflow.CurrentValue:
		bv, ok := b.(cashflow.CurrentValue)
		return ok && av == bv
	default:
		return false
	}
}

// sameDescriptors reports whether a and b carry the same descriptor set,
// independent of order (the expander may propagate descriptors in a
// different order than the originating events declared them).
func sameDescriptors(a, b []symbols.Descriptor) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	sa := sortedDescriptors(a)
	sb := sortedDescriptors(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func sortedDescriptors(d []symbols.Descriptor) []symbols.Descriptor {
	out := make([]symbols.Descriptor, len(d))
	copy(out, d)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Name < out[j].Name
	})
	return out
}
