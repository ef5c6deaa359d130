package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/calendar"
	"github.com/amfn-io/amfn/frequency"
	"github.com/amfn-io/amfn/symbols"
)

// Element is one expanded line of the amortization schedule (spec §3
// "Amortization element"). Expand (C6) populates Date/EventType/Extension
// /Value/Descriptors/Parameters; Accrual (C7) fills in the balance/interest
// fields by walking the list in order.
type Element struct {
	Date      calendar.Date
	EventType string // "principal-change", "interest-change", "statistic-value", "current-value"
	Frequency frequency.Frequency
	Intervals int

	PrincipalIncrease decimal.Decimal
	PrincipalDecrease decimal.Decimal
	Interest          decimal.Decimal
	SLInterest        decimal.Decimal
	ValueToInterest   decimal.Decimal
	ValueToPrincipal  decimal.Decimal
	Value             decimal.Decimal

	// ValueExpr, ValueDeferred and ExprBalance support spec §4.5/§4.6's
	// two kinds of non-literal value: a forward-referencing expression
	// left unresolved after expand's first pass (ValueDeferred), and an
	// expr-balance expression evaluated after a first accrual pass against
	// the running balance that pass recorded at this element (ExprBalance).
	// At most one of the two is set; when both are false, Value is already
	// final.
	ValueExpr     string
	ValueDeferred bool
	ExprBalance   bool

	Balance        decimal.Decimal
	AccruedBalance decimal.Decimal

	SortOrder int

	Descriptors []symbols.Descriptor
	Parameters  []symbols.Parameter

	// Extension carries the originating event's typed payload so the
	// accrual engine can branch on it without re-walking the event list.
	Extension Extension

	// OriginIndex and PeriodIndex identify the originating event and this
	// element's position within that event's expansion, used by the
	// expander's tie-break rules and by the compressor's run detection.
	OriginIndex int
	PeriodIndex int
}

// Polarity is the sign of a balance-result's final balance.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// AuxiliaryTotals splits auxiliary principal-change totals by active/passive
// and increase/decrease, per spec §3.
type AuxiliaryTotals struct {
	ActiveIncrease  decimal.Decimal
	ActiveDecrease  decimal.Decimal
	PassiveIncrease decimal.Decimal
	PassiveDecrease decimal.Decimal
}

// BalanceResult is the roll-up over an amortization list (spec §3).
type BalanceResult struct {
	FinalBalance   decimal.Decimal
	FinalDate      calendar.Date
	AccruedBalance decimal.Decimal

	InterestTotal     decimal.Decimal
	SLInterestTotal   decimal.Decimal
	InterestPresent   decimal.Decimal
	SLInterestPresent decimal.Decimal

	PrincipalTotalIncrease decimal.Decimal
	PrincipalTotalDecrease decimal.Decimal

	Auxiliary AuxiliaryTotals

	Polarity Polarity

	RuleOf78Seen       bool
	AccruedBalanceSeen bool

	// Statistics holds named statistic-value samples emitted during
	// accrual (present snapshots keyed by name, overwritten by the final
	// sample at the last element per spec §4.7 step 8).
	Statistics map[string]decimal.Decimal
}

// NewBalanceResult returns a zero-valued BalanceResult ready for accrual.
func NewBalanceResult() BalanceResult {
	return BalanceResult{
		FinalBalance:           decimal.Zero,
		AccruedBalance:         decimal.Zero,
		InterestTotal:          decimal.Zero,
		SLInterestTotal:        decimal.Zero,
		InterestPresent:        decimal.Zero,
		SLInterestPresent:      decimal.Zero,
		PrincipalTotalIncrease: decimal.Zero,
		PrincipalTotalDecrease: decimal.Zero,
		Polarity:               PolarityPositive,
		Statistics:             map[string]decimal.Decimal{},
	}
}
