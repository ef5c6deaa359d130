// Package accrual implements the balance & interest engine (C7): a single
// left-to-right walk over an amortization element list that maintains
// running balance, accrued interest and rolling statistics per spec §4.7's
// eight-step per-element algorithm.
package accrual

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/calendar"
	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/daycount"
	"github.com/amfn-io/amfn/decimalx"
	"github.com/amfn-io/amfn/frequency"
)

// state carries the interest-change parameters currently in effect; it
// only changes when the walk visits an interest-change element, and governs
// accrual for every element visited afterward (spec §4.7).
type state struct {
	set           bool
	basis         daycount.Basis
	daysInYear    int
	periodsPerYear int
	method        cashflow.InterestMethod
	rate          decimal.Decimal
	roundBalance  decimalx.RoundingMode
	roundDigits   int32
	continuous    bool
}

// Accrue walks elements in order, mutating each element's balance/interest
// fields in place, and returns the roll-up BalanceResult (spec §3). Elements
// with ExprBalance set must already have been resolved by the caller before
// accrual runs a second time with their final Value — on a first pass such
// elements are treated as zero-value (accrual alone cannot evaluate
// expressions; that is expand/cashflow's job via Resolver).
func Accrue(elements []cashflow.Element) (cashflow.BalanceResult, error) {
	result := cashflow.NewBalanceResult()
	if len(elements) == 0 {
		return result, nil
	}

	balance := decimal.Zero
	accruedBalance := decimal.Zero
	var st state
	prevDate := elements[0].Date
	pendingFinal := map[string]cashflow.StatisticValue{}

	for i := range elements {
		el := &elements[i]

		principalFirst := false
		if pc, ok := el.Extension.(cashflow.PrincipalChange); ok {
			principalFirst = pc.PrincipalFirst
		}

		applyPrincipal := func() {
			delta := principalDelta(*el)
			balance = balance.Add(delta)
			if delta.IsPositive() {
				el.PrincipalIncrease = delta
				result.PrincipalTotalIncrease = result.PrincipalTotalIncrease.Add(delta)
			} else if delta.IsNegative() {
				el.PrincipalDecrease = delta.Neg()
				result.PrincipalTotalDecrease = result.PrincipalTotalDecrease.Add(delta.Neg())
			}
			if pc, ok := el.Extension.(cashflow.PrincipalChange); ok && pc.Auxiliary {
				trackAuxiliary(&result.Auxiliary, pc, delta)
			}
		}

		if principalFirst {
			applyPrincipal()
		}

		if st.set {
			tau, err := dayFraction(st, prevDate, el.Date)
			if err != nil {
				return result, amfnerr.WithEvent(amfnerr.DateInvalid, el.OriginIndex, "accrual day-count failed: %v", err)
			}
			accrued := balance.Mul(st.rate).Mul(tau)
			if st.basis == daycount.Periodic && !st.continuous && st.periodsPerYear > 0 {
				// rate/periodsPerYear directly: a rounded 1/periodsPerYear
				// tau would shave the last digit off an exact period's interest.
				accrued = balance.Mul(st.rate).Div(decimal.NewFromInt(int64(st.periodsPerYear)))
			}
			switch st.method {
			case cashflow.InterestSimple:
				el.SLInterest = accrued
				result.SLInterestTotal = result.SLInterestTotal.Add(accrued)
			default:
				accruedBalance = accruedBalance.Add(accrued)
			}
		}

		if ic, ok := el.Extension.(cashflow.InterestChange); ok {
			// Posting boundary: realize accrued_balance into posted
			// interest under the basis/rounding that was in effect
			// BEFORE this interest-change updates it, then reset.
			if st.set && st.method == cashflow.InterestActuarial {
				posted := decimalx.Round(accruedBalance, st.roundDigits, st.roundBalance)
				residual := accruedBalance.Sub(posted)
				el.Interest = posted
				result.InterestTotal = result.InterestTotal.Add(posted)
				if st.roundBalance == decimalx.RoundNone {
					accruedBalance = residual
				} else {
					accruedBalance = decimal.Zero
				}
				result.AccruedBalanceSeen = true
			}
			st = newState(ic, el.Frequency)
			if ic.RollingStatistics {
				daysInPeriod := 365
				if st.periodsPerYear > 0 {
					daysInPeriod = 365 / st.periodsPerYear
				}
				if err := rollingStatistics(&result, st, daysInPeriod); err != nil {
					return result, amfnerr.WithEvent(amfnerr.FrequencyInvalid, el.OriginIndex, "rolling statistics: %v", err)
				}
			}
		}

		// value-to-interest then value-to-principal (spec §4.7 step 5): an
		// interest-change element's Value is a payment, not a rate — it
		// pays down posted interest first, then principal. PrincipalChange
		// elements are handled entirely through applyPrincipal above and
		// must not also run through this split, or their Value would be
		// applied to the balance twice.
		if _, isPayment := el.Extension.(cashflow.InterestChange); isPayment && !el.Value.IsZero() {
			unpaidInterest := result.InterestTotal.Sub(appliedInterestSoFar(elements[:i]))
			toInterest := el.Value
			if unpaidInterest.LessThan(toInterest) {
				toInterest = unpaidInterest
			}
			if toInterest.IsNegative() {
				toInterest = decimal.Zero
			}
			el.ValueToInterest = toInterest
			el.ValueToPrincipal = el.Value.Sub(toInterest)
			balance = balance.Sub(el.ValueToPrincipal)
		}

		if !principalFirst {
			applyPrincipal()
		}

		el.Balance = balance
		el.AccruedBalance = accruedBalance

		if sv, ok := el.Extension.(cashflow.StatisticValue); ok {
			if sv.Final {
				pendingFinal[sv.Name] = sv
			} else {
				result.Statistics[sv.Name] = statisticSample(sv, *el)
			}
		}

		prevDate = el.Date
	}

	last := elements[len(elements)-1]
	for name, sv := range pendingFinal {
		result.Statistics[name] = statisticSample(sv, last)
	}

	result.FinalBalance = last.Balance
	result.FinalDate = last.Date
	result.AccruedBalance = last.AccruedBalance
	if result.FinalBalance.IsNegative() {
		result.Polarity = cashflow.PolarityNegative
	}

	return result, nil
}

// principalDelta returns the signed balance change a principal-change
// element contributes, per its PrincipalType.
func principalDelta(el cashflow.Element) decimal.Decimal {
	pc, ok := el.Extension.(cashflow.PrincipalChange)
	if !ok {
		return decimal.Zero
	}
	v := el.Value
	switch pc.PrincipalType {
	case cashflow.PrincipalNegative, cashflow.PrincipalDecrease:
		return v.Neg()
	default: // positive, increase
		return v
	}
}

func trackAuxiliary(totals *cashflow.AuxiliaryTotals, pc cashflow.PrincipalChange, delta decimal.Decimal) {
	switch {
	case pc.Passive && delta.IsPositive():
		totals.PassiveIncrease = totals.PassiveIncrease.Add(delta)
	case pc.Passive:
		totals.PassiveDecrease = totals.PassiveDecrease.Add(delta.Neg())
	case delta.IsPositive():
		totals.ActiveIncrease = totals.ActiveIncrease.Add(delta)
	default:
		totals.ActiveDecrease = totals.ActiveDecrease.Add(delta.Neg())
	}
}

// appliedInterestSoFar sums interest already posted and reduced by earlier
// value-to-interest applications, used to cap how much of the current
// element's value can be attributed to interest.
func appliedInterestSoFar(elements []cashflow.Element) decimal.Decimal {
	total := decimal.Zero
	for _, el := range elements {
		total = total.Add(el.ValueToInterest)
	}
	return total
}

func newState(ic cashflow.InterestChange, accrualFreq frequency.Frequency) state {
	freq := ic.InterestFrequency
	if freq == "" {
		freq = accrualFreq
	}
	periodsPerYear := 0
	if freq != frequency.Continuous {
		if n, err := frequency.PeriodsPerYear(freq); err == nil {
			periodsPerYear = n
		}
	}
	return state{
		set:            true,
		basis:          daycount.Basis(ic.DayCountBasis),
		daysInYear:     ic.DaysInYear,
		periodsPerYear: periodsPerYear,
		method:         ic.InterestMethod,
		rate:           ic.Rate,
		roundBalance:   decimalx.RoundingMode(ic.RoundBalance),
		roundDigits:    ic.RoundDecimalDigits,
		continuous:     freq == frequency.Continuous,
	}
}

func dayFraction(st state, d1, d2 calendar.Date) (decimal.Decimal, error) {
	if d2.Before(d1) {
		return decimal.Zero, amfnerr.New(amfnerr.DateInvalid, "accrual span must be non-decreasing, got %s after %s", d1, d2)
	}
	if st.continuous {
		days := calendar.DaysBetween(d1, d2)
		return decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(365)), nil
	}
	return daycount.Fraction(st.basis, d1, d2, st.periodsPerYear, st.daysInYear)
}

// statisticSample computes the value a statistic-value marker records. The
// name "accrued-balance" records the element's accrued balance; any other
// name records the element's running balance, matching the common
// solver-target idiom of S4 (target a named statistic at the final balance).
func statisticSample(sv cashflow.StatisticValue, el cashflow.Element) decimal.Decimal {
	switch sv.Name {
	case "accrued-balance":
		return el.AccruedBalance
	default:
		return el.Balance
	}
}
