package solver

import "github.com/shopspring/decimal"

// Target describes one solve() request, spec §6: which event field is
// unknown, which observation constrains it, and the value that observation
// must reach.
type Target struct {
	Kind UnknownKind

	// EventOriginIndex identifies the event whose value/rate/periods is the
	// unknown, by its position in the caller-supplied event list.
	EventOriginIndex int

	// StatisticName, when set, observes the named statistic-value sample
	// after each trial evaluation. A current-value marker carries no name
	// of its own (spec.md §3: current-value is just the eom/passive/present
	// flags), so observing one instead sets ObserveCurrentValue and
	// CurrentValueOriginIndex to the origin-index of the current-value
	// event whose projected balance constrains the solve. Exactly one of
	// StatisticName or ObserveCurrentValue is set.
	StatisticName           string
	ObserveCurrentValue     bool
	CurrentValueOriginIndex int

	TargetAmount  decimal.Decimal
	DecimalDigits int32

	// InitialGuess and SecondGuess seed the secant iteration. When unset
	// (both zero) the orchestrator supplies a sign-spanning default pair.
	InitialGuess decimal.Decimal
	SecondGuess  decimal.Decimal
}

// TargetSymbol is the reserved symbol name the candidate is bound to in the
// per-iteration symbol table while the solver re-runs expand/accrual/compress
// (spec §4.9).
const TargetSymbol = "@target"
