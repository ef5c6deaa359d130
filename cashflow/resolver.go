package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/expr"
	"github.com/amfn-io/amfn/symbols"
)

// Builtins is the read-only set of built-in identifiers the scope chain
// falls back to once event-local and preferences parameters are exhausted
// (spec §4.3: "event-local parameters → cashflow preferences parameters →
// global preferences parameters → built-in symbols").
type Builtins struct {
	Balance                 decimal.Decimal
	AccruedBalance          decimal.Decimal
	InterestTotal           decimal.Decimal
	SLInterestTotal         decimal.Decimal
	PrincipalTotalIncrease  decimal.Decimal
	PrincipalTotalDecrease  decimal.Decimal
	Statistics              map[string]decimal.Decimal
	EventDate               expr.Value // KindDate
	EventIndex              int
	PeriodsRemaining        int
	ExchangeRate            decimal.Decimal
}

// scopeResolver adapts a symbols.Scope plus the current Builtins snapshot
// into an expr.Resolver, the single point where C3 (expr), C4 (symbols) and
// C5 (cashflow) meet.
type scopeResolver struct {
	scope    *symbols.Scope
	builtins Builtins
}

// NewResolver builds the expr.Resolver used to evaluate an event's
// expressions at a given point in the expansion/accrual pipeline.
func NewResolver(scope *symbols.Scope, builtins Builtins) expr.Resolver {
	return &scopeResolver{scope: scope, builtins: builtins}
}

func (r *scopeResolver) Resolve(name string) (expr.Value, bool) {
	if p, ok := r.scope.Lookup(name); ok {
		if d, ok := p.AsDecimal(); ok {
			return expr.DecimalValue(d), true
		}
		if s, ok := p.Value.(string); ok {
			return expr.StringValue(s), true
		}
	}

	switch name {
	case "balance":
		return expr.DecimalValue(r.builtins.Balance), true
	case "accrued-balance":
		return expr.DecimalValue(r.builtins.AccruedBalance), true
	case "interest-total":
		return expr.DecimalValue(r.builtins.InterestTotal), true
	case "sl-interest-total":
		return expr.DecimalValue(r.builtins.SLInterestTotal), true
	case "principal-total-increase":
		return expr.DecimalValue(r.builtins.PrincipalTotalIncrease), true
	case "principal-total-decrease":
		return expr.DecimalValue(r.builtins.PrincipalTotalDecrease), true
	case "event-date":
		return r.builtins.EventDate, true
	case "event-index":
		return expr.DecimalValue(decimal.NewFromInt(int64(r.builtins.EventIndex))), true
	case "periods-remaining":
		return expr.DecimalValue(decimal.NewFromInt(int64(r.builtins.PeriodsRemaining))), true
	case "exchange-rate":
		return expr.DecimalValue(r.builtins.ExchangeRate), true
	}

	if v, ok := r.builtins.Statistics[name]; ok {
		return expr.DecimalValue(v), true
	}

	return expr.Value{}, false
}
