// Package cashflow implements the event model of spec §4.5: Event,
// EventList, the four Extension payload types, Element, and BalanceResult,
// plus the expr.Resolver adapter (NewResolver) that lets C6/C7 evaluate
// expressions against a symbols.Scope and the running accrual state. The
// top-level orchestrator that wires C6-C10 into the evaluate/expand
// /compress/solve/convert operations of spec §6 lives in package engine,
// one level up — it depends on compress and solver, both of which import
// cashflow's types, so it cannot live in this package without a cycle.
package cashflow

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/frequency"
	"github.com/amfn-io/amfn/symbols"
)

// PrincipalType is the closed set of polarity hints on a principal-change
// extension.
type PrincipalType string

const (
	PrincipalPositive PrincipalType = "positive"
	PrincipalNegative PrincipalType = "negative"
	PrincipalIncrease PrincipalType = "increase"
	PrincipalDecrease PrincipalType = "decrease"
)

// InterestMethod distinguishes actuarial compounding from flat simple
// interest accumulation.
type InterestMethod string

const (
	InterestActuarial InterestMethod = "actuarial"
	InterestSimple    InterestMethod = "simple-interest"
)

// PrincipalChange is the extension carried by a principal-change event.
type PrincipalChange struct {
	PrincipalType  PrincipalType
	Auxiliary      bool
	Passive        bool
	PrincipalFirst bool
	Statistics     bool
	EOM            bool
}

// InterestChange is the extension carried by an interest-change event. Rate
// is the nominal annual interest rate, accrued at InterestFrequency (the
// event's own Frequency if unset). EffectiveFrequency is carried through but
// accrual does not read it: Rate is not converted from another quoting
// frequency.
type InterestChange struct {
	Rate               decimal.Decimal
	DayCountBasis      string // daycount.Basis, kept as string to avoid an import cycle concern; not validated here, daycount.Fraction rejects an unsupported basis during accrual
	DaysInYear         int
	InterestMethod     InterestMethod
	RoundBalance       string // decimalx.RoundingMode
	RoundDecimalDigits int32
	EffectiveFrequency frequency.Frequency
	InterestFrequency  frequency.Frequency
	RollingStatistics  bool
}

// StatisticValue is the extension carried by a statistic-value event: a
// named marker that anchors solver targets or emitted aggregates.
type StatisticValue struct {
	Name  string
	Final bool
	EOM   bool
}

// CurrentValue is the extension carried by a current-value event: a
// zero-impact anchor the solver reads the projected balance at.
type CurrentValue struct {
	EOM     bool
	Passive bool
	Present bool
}

// Extension is implemented by exactly one of PrincipalChange, InterestChange,
// StatisticValue, CurrentValue — the sum type spec §3 describes as "exactly
// one extension" per event.
type Extension interface {
	extension()
}

func (PrincipalChange) extension() {}
func (InterestChange) extension()  {}
func (StatisticValue) extension()  {}
func (CurrentValue) extension()    {}

// SkipMask is a 64-bit pattern: the nth generated period (0-indexed) is
// skipped iff bit n is set; periods past bit 63 are never skipped.
type SkipMask uint64

// Skipped reports whether period index n (0-indexed within the event's
// expansion) is suppressed by the mask. Periods beyond bit 63 are never
// skipped rather than wrapping back onto low-order bits — the mask reads as
// a fixed 64-bit window, not a repeating cycle, matching invariant 5's
// element-count check (mask & (2^periods-1)) rather than the word "cyclic".
func (m SkipMask) Skipped(n int) bool {
	if n < 0 || n > 63 {
		return false
	}
	return m&(1<<uint(n)) != 0
}

// PopCount returns the number of set bits within the low `periods` bits of
// the mask, used by invariant 5 (element count = periods - popcount).
func (m SkipMask) PopCount(periods int) int {
	if periods <= 0 {
		return 0
	}
	if periods > 64 {
		periods = 64
	}
	var masked uint64
	if periods == 64 {
		masked = uint64(m)
	} else {
		masked = uint64(m) & (1<<uint(periods) - 1)
	}
	count := 0
	for masked != 0 {
		count += int(masked & 1)
		masked >>= 1
	}
	return count
}

// Event is one entry of a cashflow's event list: a tuple of date/value
// /periods — each either a literal or an expression — plus frequency,
// intervals, sort-order, skip-mask, local parameters, descriptors, and
// exactly one extension (spec §3/§4.5).
type Event struct {
	// EventDate is a literal ISO date, used when EventDateExpr is empty.
	EventDate string
	// EventDateExpr, if non-empty, is evaluated to produce the date.
	EventDateExpr string

	// EventValue is a literal decimal string, used when EventValueExpr is
	// empty and ExprBalance is false.
	EventValue string
	// EventValueExpr, if non-empty, is evaluated to produce the value.
	EventValueExpr string
	// ExprBalance means "re-evaluate EventValueExpr against the running
	// balance at emit time" (used for payoff events); it takes priority
	// over a cached EventValueExpr result.
	ExprBalance bool

	// EventPeriods is a literal period count, used when EventPeriodsExpr
	// is empty.
	EventPeriods int
	// EventPeriodsExpr, if non-empty, is evaluated to produce EventPeriods.
	EventPeriodsExpr string

	Frequency frequency.Frequency
	Intervals int
	SortOrder int
	SkipMask  SkipMask

	Parameters  []symbols.Parameter
	Descriptors []symbols.Descriptor

	Extension Extension

	// OriginIndex is the event's position in the caller-supplied list,
	// used as the final sort tie-break (spec invariant 1) and to resolve
	// the "earlier in input wins" same-date/same-sort-order collision
	// rule of spec §4.6.
	OriginIndex int
}

// ResolvedValue caches the outcome of evaluating EventDate/EventValue
// /EventPeriods once per expansion pass, so the expander does not
// re-evaluate an identical expression per generated period.
type ResolvedValue struct {
	Date         string
	Value        decimal.Decimal
	ValueIsExpr  bool // true until EventValueExpr resolves (deferred)
	Periods      int
	PeriodsIsSet bool
}

// EventList is an ordered collection of events, sortable by the
// (event-date, sort-order, stable-original-index) key of spec §4.5. It
// always holds the caller's original events in OriginIndex order; Sorted
// returns a new, stably sorted copy without mutating the receiver.
type EventList struct {
	Events []Event
}

// NewEventList builds an EventList, stamping OriginIndex on each event in
// the order given (stable — the caller's insertion order is the tie-break
// of last resort).
func NewEventList(events []Event) EventList {
	out := make([]Event, len(events))
	for i, e := range events {
		e.OriginIndex = i
		out[i] = e
	}
	return EventList{Events: out}
}

// Sorted returns a copy of el's events ordered by (event-date literal,
// sort-order, origin-index). Expression-valued dates are not resolved here;
// callers needing expression-resolved ordering must resolve dates first and
// pass the resolved literal back through a fresh EventList. The expander
// does not use Sorted: it resolves dates per event and sorts the generated
// elements instead.
func (el EventList) Sorted() []Event {
	out := make([]Event, len(el.Events))
	copy(out, el.Events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EventDate != b.EventDate {
			return a.EventDate < b.EventDate
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.OriginIndex < b.OriginIndex
	})
	return out
}
