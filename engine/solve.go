package engine

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/compress"
	"github.com/amfn-io/amfn/solver"
	"github.com/amfn-io/amfn/symbols"
)

// defaultGuessLow and defaultGuessHigh seed the secant iteration when a
// Target supplies no initial guesses of its own.
var (
	defaultGuessLow  = decimal.NewFromInt(-1)
	defaultGuessHigh = decimal.NewFromInt(1)
)

// Solve finds the candidate value of target's unknown (an event's value, an
// interest-change's rate, or an event's periods count) that drives the
// named statistic or current-value observation to target.TargetAmount —
// spec.md §6's solve() operation and spec.md §4.9's secant-with-bracketing
// method. Each trial substitutes the candidate into the per-evaluation
// symbol table under the reserved name @target and re-runs C6 (expand), C7
// (accrual), and C8 (compress), exactly the re-evaluation spec.md §4.9 calls
// for.
func Solve(cf Cashflow, target solver.Target) (solver.Result, error) {
	eval := func(candidate decimal.Decimal) (decimal.Decimal, error) {
		return evaluateTrial(cf, target, candidate)
	}

	x0, x1 := target.InitialGuess, target.SecondGuess
	if x0.IsZero() && x1.IsZero() {
		x0, x1 = defaultGuessLow, defaultGuessHigh
	}

	if target.Kind == solver.UnknownPeriods {
		return solver.SolveInteger(eval, x0, x1, target.TargetAmount, target.DecimalDigits)
	}
	return solver.Solve(eval, x0, x1, target.TargetAmount, target.DecimalDigits)
}

func evaluateTrial(cf Cashflow, target solver.Target, candidate decimal.Decimal) (decimal.Decimal, error) {
	trial := cf
	trial.CashflowPreferences = append(append([]symbols.Parameter{}, cf.CashflowPreferences...),
		symbols.Parameter{Name: solver.TargetSymbol, Type: symbols.ParamFloat, Value: candidate})

	events, err := substituteTarget(cf.Events, target, candidate)
	if err != nil {
		return decimal.Decimal{}, err
	}
	trial.Events = events

	elements, balance, err := Expand(trial)
	if err != nil {
		return decimal.Decimal{}, err
	}
	// compress runs on every iteration per spec.md §4.9, even though only
	// the observation below is read back — a non-mergeable boundary in the
	// compressed run (e.g. a rounding discontinuity) is itself diagnostic
	// of a candidate that produces an inconsistent schedule.
	compress.Compress(elements)

	return observe(elements, balance, target)
}

// substituteTarget returns a copy of events with the field target.Kind
// names, on the event whose OriginIndex is target.EventOriginIndex,
// replaced by candidate.
func substituteTarget(events cashflow.EventList, target solver.Target, candidate decimal.Decimal) (cashflow.EventList, error) {
	out := make([]cashflow.Event, len(events.Events))
	copy(out, events.Events)

	for i, ev := range out {
		if ev.OriginIndex != target.EventOriginIndex {
			continue
		}
		switch target.Kind {
		case solver.UnknownValue:
			ev.EventValue = candidate.String()
			ev.EventValueExpr = ""
			ev.ExprBalance = false
		case solver.UnknownPeriods:
			ev.EventPeriods = int(candidate.IntPart())
			ev.EventPeriodsExpr = ""
		case solver.UnknownRate:
			ic, ok := ev.Extension.(cashflow.InterestChange)
			if !ok {
				return cashflow.EventList{}, amfnerr.WithEvent(amfnerr.SchemaInvalid, target.EventOriginIndex,
					"solve target kind %q requires an interest-change event", target.Kind)
			}
			ic.Rate = candidate
			ev.Extension = ic
		default:
			return cashflow.EventList{}, amfnerr.New(amfnerr.SchemaInvalid, "unknown solve target kind %q", target.Kind)
		}
		out[i] = ev
		return cashflow.EventList{Events: out}, nil
	}

	return cashflow.EventList{}, amfnerr.New(amfnerr.SchemaInvalid,
		"solve target event-origin-index %d not found", target.EventOriginIndex)
}

// observe reads the statistic or current-value observation target names out
// of a trial's evaluation.
func observe(elements []cashflow.Element, balance cashflow.BalanceResult, target solver.Target) (decimal.Decimal, error) {
	if target.ObserveCurrentValue {
		for _, el := range elements {
			if el.OriginIndex != target.CurrentValueOriginIndex {
				continue
			}
			if _, ok := el.Extension.(cashflow.CurrentValue); !ok {
				continue
			}
			return el.Balance, nil
		}
		return decimal.Decimal{}, amfnerr.New(amfnerr.SolverTargetUnreachable,
			"current-value marker at origin-index %d was never reached", target.CurrentValueOriginIndex)
	}

	v, ok := balance.Statistics[target.StatisticName]
	if !ok {
		return decimal.Decimal{}, amfnerr.New(amfnerr.SolverTargetUnreachable,
			"statistic %q was never emitted", target.StatisticName)
	}
	return v, nil
}
