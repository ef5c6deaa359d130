// Package expand implements the expander (C6): it turns a cashflow's event
// list into an amortization element list per spec §4.6's five-step
// algorithm.
package expand

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/calendar"
	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/expr"
	"github.com/amfn-io/amfn/frequency"
	"github.com/amfn-io/amfn/symbols"
)

// Result is the output of a single expand pass: the amortization elements
// in final sorted order, plus the indices of any element whose value is
// still deferred (a forward statistic or running-total reference, or an
// expr-balance expression) and needs a second pass once accrual has
// produced a BalanceResult.
type Result struct {
	Elements []cashflow.Element
	Deferred []int
}

// Expand runs steps 1-4 of spec §4.6 over events, using outerScope as the
// enclosing (cashflow/global preferences) parameter layers and
// initialDescriptors as the descriptor view in effect before the first
// event. Step 5 (deferred resolution) is a separate call, ResolveDeferred,
// since it needs a BalanceResult that only exists after a first accrual
// pass — expand alone cannot produce it.
func Expand(events cashflow.EventList, outerScope *symbols.Scope, initialDescriptors symbols.DescriptorView) (*Result, error) {
	view := initialDescriptors
	var elements []cashflow.Element

	for _, ev := range events.Events {
		outerScope.Push(ev.Parameters)
		resolvedDate, err := resolveDate(ev, outerScope)
		if err != nil {
			outerScope.Pop()
			return nil, err
		}
		periods, err := resolvePeriods(ev, outerScope)
		if err != nil {
			outerScope.Pop()
			return nil, err
		}

		view = view.Apply(ev.Descriptors)
		eventType, eom := classify(ev.Extension)

		dates, err := frequency.Sequence(resolvedDate, ev.Frequency, ev.Intervals, periods, eom)
		if err != nil {
			outerScope.Pop()
			return nil, err
		}
		if periods <= 0 {
			// Zero-period events emit exactly one element at the anchor
			// date (spec §4.6 edge case).
			dates = []calendar.Date{resolvedDate}
		}

		for i, d := range dates {
			if ev.SkipMask.Skipped(i) {
				continue
			}
			el := cashflow.Element{
				Date:        d,
				EventType:   eventType,
				Frequency:   ev.Frequency,
				Intervals:   ev.Intervals,
				SortOrder:   ev.SortOrder,
				Descriptors: view.Snapshot(ev.Descriptors),
				Parameters:  ev.Parameters,
				Extension:   ev.Extension,
				OriginIndex: ev.OriginIndex,
				PeriodIndex: i,
			}
			if err := resolveValue(ev, outerScope, &el); err != nil {
				outerScope.Pop()
				return nil, err
			}
			elements = append(elements, el)
		}
		outerScope.Pop()
	}

	sortElements(elements)

	deferred := make([]int, 0)
	for i, el := range elements {
		if el.ValueDeferred || el.ExprBalance {
			deferred = append(deferred, i)
		}
	}

	return &Result{Elements: elements, Deferred: deferred}, nil
}

// ResolveDeferred re-evaluates each deferred element's value expression now
// that a BalanceResult exists (spec §4.6 step 5), using snap as the
// builtins snapshot (final totals/statistics from the first accrual pass);
// an expr-balance element instead reads "balance" as the running balance
// that pass recorded on the element itself. It mutates elements in place
// and clears ValueDeferred on success.
func ResolveDeferred(elements []cashflow.Element, deferred []int, outerScope *symbols.Scope, snap cashflow.Builtins) error {
	for _, idx := range deferred {
		el := &elements[idx]
		outerScope.Push(el.Parameters)
		node, err := expr.Parse(el.ValueExpr)
		if err != nil {
			outerScope.Pop()
			return err
		}
		builtins := snap
		if el.ExprBalance {
			builtins.Balance = el.Balance
		}
		resolver := cashflow.NewResolver(outerScope, builtins)
		evaluator := expr.NewEvaluator(resolver)
		evaluator.Final = true
		v, err := evaluator.Eval(node)
		outerScope.Pop()
		if err != nil {
			return err
		}
		if v.Kind != expr.KindDecimal {
			return amfnerr.WithSpan(amfnerr.ExprTypeError, el.OriginIndex, el.ValueExpr, "deferred event-value must resolve to a decimal")
		}
		el.Value = v.Dec
		el.ValueDeferred = false
	}
	return nil
}

func resolveDate(ev cashflow.Event, scope *symbols.Scope) (calendar.Date, error) {
	if ev.EventDateExpr == "" {
		d, err := calendar.Parse(ev.EventDate)
		if err != nil {
			return calendar.Date{}, amfnerr.WithSpan(amfnerr.DateInvalid, ev.OriginIndex, ev.EventDate, "invalid event-date: %v", err)
		}
		return d, nil
	}
	v, err := evalExpr(ev.EventDateExpr, scope, cashflow.Builtins{})
	if err != nil {
		return calendar.Date{}, amfnerr.WithSpan(amfnerr.DateInvalid, ev.OriginIndex, ev.EventDateExpr, "event-date expression did not resolve: %v", err)
	}
	if v.Kind != expr.KindDate {
		return calendar.Date{}, amfnerr.WithSpan(amfnerr.DateInvalid, ev.OriginIndex, ev.EventDateExpr, "event-date expression must resolve to a date")
	}
	return v.Date, nil
}

func resolvePeriods(ev cashflow.Event, scope *symbols.Scope) (int, error) {
	if ev.EventPeriodsExpr == "" {
		return ev.EventPeriods, nil
	}
	v, err := evalExpr(ev.EventPeriodsExpr, scope, cashflow.Builtins{})
	if err != nil {
		return 0, amfnerr.WithSpan(amfnerr.SchemaInvalid, ev.OriginIndex, ev.EventPeriodsExpr, "event-periods expression did not resolve: %v", err)
	}
	if v.Kind != expr.KindDecimal {
		return 0, amfnerr.WithSpan(amfnerr.ExprTypeError, ev.OriginIndex, ev.EventPeriodsExpr, "event-periods expression must resolve to a decimal")
	}
	return int(v.Dec.IntPart()), nil
}

// resolveValue implements the value half of spec §4.6 step 1: a literal
// resolves immediately; expr-balance is always left for the second pass (it
// needs the running balance, which only exists after a first accrual pass);
// any other expression is attempted eagerly and, if unresolved (a forward
// statistic or running-total reference), left for the second pass.
func resolveValue(ev cashflow.Event, scope *symbols.Scope, el *cashflow.Element) error {
	if ev.ExprBalance {
		el.ValueExpr = ev.EventValueExpr
		el.ExprBalance = true
		el.Value = decimal.Zero
		return nil
	}
	if ev.EventValueExpr == "" {
		if ev.EventValue == "" {
			el.Value = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(ev.EventValue)
		if err != nil {
			return amfnerr.WithSpan(amfnerr.SchemaInvalid, ev.OriginIndex, ev.EventValue, "invalid event-value literal: %v", err)
		}
		el.Value = d
		return nil
	}

	// Running totals only exist once accrual has run, so on this pass they
	// read as unresolved (unless a parameter shadows them) and defer.
	inner := cashflow.NewResolver(scope, cashflow.Builtins{})
	firstPass := expr.ResolverFunc(func(name string) (expr.Value, bool) {
		switch name {
		case "balance", "accrued-balance", "interest-total", "sl-interest-total", "principal-total-increase", "principal-total-decrease":
			if _, local := scope.Lookup(name); !local {
				return expr.Value{}, false
			}
		}
		return inner.Resolve(name)
	})
	node, err := expr.Parse(ev.EventValueExpr)
	if err != nil {
		return err
	}
	v, err := expr.NewEvaluator(firstPass).Eval(node)
	if err != nil {
		if amfnerr.Is(err, amfnerr.ExprUnresolved) {
			el.ValueExpr = ev.EventValueExpr
			el.ValueDeferred = true
			el.Value = decimal.Zero
			return nil
		}
		return err
	}
	if v.Kind != expr.KindDecimal {
		return amfnerr.WithSpan(amfnerr.ExprTypeError, ev.OriginIndex, ev.EventValueExpr, "event-value expression must resolve to a decimal")
	}
	el.Value = v.Dec
	return nil
}

func evalExpr(src string, scope *symbols.Scope, builtins cashflow.Builtins) (expr.Value, error) {
	node, err := expr.Parse(src)
	if err != nil {
		return expr.Value{}, err
	}
	resolver := cashflow.NewResolver(scope, builtins)
	return expr.NewEvaluator(resolver).Eval(node)
}

func classify(ext cashflow.Extension) (eventType string, eom bool) {
	switch e := ext.(type) {
	case cashflow.PrincipalChange:
		return "principal-change", e.EOM
	case cashflow.InterestChange:
		return "interest-change", false
	case cashflow.StatisticValue:
		return "statistic-value", e.EOM
	case cashflow.CurrentValue:
		return "current-value", e.EOM
	default:
		return "unknown", false
	}
}

// sortElements implements spec §4.6 step 4: re-sort by (date, sort-order,
// event-origin-index, period-index) with the stated tie-break — on the same
// date, an element from a principal-first principal-change event sorts
// first; failing that, interest-change elements sort last; failing that,
// by sort-order, then origin/period index as the final deterministic
// tie-break (spec invariant 1).
func sortElements(elements []cashflow.Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		pa, pb := tieBreakClass(a), tieBreakClass(b)
		if pa != pb {
			return pa < pb
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.OriginIndex != b.OriginIndex {
			return a.OriginIndex < b.OriginIndex
		}
		return a.PeriodIndex < b.PeriodIndex
	})
}

// tieBreakClass returns 0 for a principal-first principal-change element
// (sorts first), 2 for any interest-change element (sorts last), 1
// otherwise.
func tieBreakClass(el cashflow.Element) int {
	if pc, ok := el.Extension.(cashflow.PrincipalChange); ok && pc.PrincipalFirst {
		return 0
	}
	if el.EventType == "interest-change" {
		return 2
	}
	return 1
}

