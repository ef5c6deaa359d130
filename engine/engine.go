// Package engine is the top-level orchestrator that wires the expander
// (C6), balance engine (C7), compressor (C8), solver (C9), and exchange-rate
// service (C10) into the evaluate/expand/compress/solve/convert operations
// spec.md §6 exposes. It holds no package-level state: every operation is a
// pure function of its Cashflow argument, matching the single-threaded,
// no-shared-mutable-state evaluation model of spec.md §5.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/accrual"
	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/compress"
	"github.com/amfn-io/amfn/expand"
	"github.com/amfn-io/amfn/fx"
	"github.com/amfn-io/amfn/solver"
	"github.com/amfn-io/amfn/symbols"
)

// Cashflow is one evaluable unit: an event list plus the preference layers
// and descriptor/exchange-rate context in scope for it, matching the
// top-level cashflows/exchange-rates/preferences input shape of spec.md §6.
type Cashflow struct {
	Events cashflow.EventList

	// GlobalPreferences and CashflowPreferences are pushed onto the scope
	// chain outermost-first, per spec.md §4.3's lookup order (event-local
	// parameters, pushed per-event by expand itself, sit inside both).
	GlobalPreferences   []symbols.Parameter
	CashflowPreferences []symbols.Parameter

	// Descriptors seeds the descriptor view in effect before the first
	// event (spec.md §4.5's propagation model).
	Descriptors []symbols.Descriptor

	// Rates is the exchange-rate graph convert() resolves against. The
	// exchange-rate expression builtin is not derived from it. Nil is valid
	// for a cashflow that never references a foreign currency.
	Rates *fx.Graph
}

// Result is evaluate()'s output, spec.md §6: the expanded am-list, the
// compress-list, and the balance-result.
type Result struct {
	Elements   []cashflow.Element
	Compressed []compress.Element
	Balance    cashflow.BalanceResult
}

// Evaluate runs the full pipeline: expand, then compress — spec.md §6's
// evaluate() operation.
func Evaluate(cf Cashflow) (Result, error) {
	elements, balance, err := Expand(cf)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Elements:   elements,
		Compressed: compress.Compress(elements),
		Balance:    balance,
	}, nil
}

// Expand runs C6 (expand) and C7 (accrual), including the two-pass
// deferred-expression resolution spec.md §4.6 step 5 requires, stopping
// short of compress — spec.md §6's expand() operation.
func Expand(cf Cashflow) ([]cashflow.Element, cashflow.BalanceResult, error) {
	scope := baseScope(cf)
	view := symbols.NewDescriptorView().Apply(cf.Descriptors)

	pass1, err := expand.Expand(cf.Events, scope, view)
	if err != nil {
		return nil, cashflow.BalanceResult{}, err
	}

	balance, err := accrual.Accrue(pass1.Elements)
	if err != nil {
		return nil, cashflow.BalanceResult{}, err
	}

	if len(pass1.Deferred) == 0 {
		return pass1.Elements, balance, nil
	}

	if err := expand.ResolveDeferred(pass1.Elements, pass1.Deferred, scope, builtinsSnapshot(balance)); err != nil {
		return nil, cashflow.BalanceResult{}, err
	}

	balance, err = accrual.Accrue(pass1.Elements)
	if err != nil {
		return nil, cashflow.BalanceResult{}, err
	}
	return pass1.Elements, balance, nil
}

// Compress runs C8 alone over an already-expanded element list — spec.md
// §6's compress() operation.
func Compress(elements []cashflow.Element) []compress.Element {
	return compress.Compress(elements)
}

// Convert resolves the exchange rate from/to within rates and applies it to
// amount — spec.md §6's convert() operation.
func Convert(rates *fx.Graph, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if rates == nil {
		return decimal.Decimal{}, amfnerr.New(amfnerr.NoExchangeRate, "no exchange-rate graph configured")
	}
	return fx.Convert(rates, amount, from, to)
}

func baseScope(cf Cashflow) *symbols.Scope {
	scope := symbols.NewScope()
	scope.Push(cf.GlobalPreferences)
	scope.Push(cf.CashflowPreferences)
	return scope
}

func builtinsSnapshot(balance cashflow.BalanceResult) cashflow.Builtins {
	return cashflow.Builtins{
		Balance:                balance.FinalBalance,
		AccruedBalance:         balance.AccruedBalance,
		InterestTotal:          balance.InterestTotal,
		SLInterestTotal:        balance.SLInterestTotal,
		PrincipalTotalIncrease: balance.PrincipalTotalIncrease,
		PrincipalTotalDecrease: balance.PrincipalTotalDecrease,
		Statistics:             balance.Statistics,
	}
}
