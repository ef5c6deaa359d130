package accrual

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/decimalx"
	"github.com/amfn-io/amfn/frequency"
)

// ConvertRate converts rate, a periodic rate quoted at frequency from (or,
// when from is Continuous, a continuously-compounded annual rate), to the
// equivalent periodic rate at frequency to, per spec §4.7. Every conversion
// routes through the effective annual rate so the two directions (into a
// frequency, out of a frequency) stay consistent with each other: actuarial
// composes through (1+r)^p_n - 1 one way and (1+EAR)^(1/p_t) - 1 the other;
// simple interest scales linearly; continuous uses ln/exp at the boundary.
func ConvertRate(rate decimal.Decimal, from, to frequency.Frequency, method cashflow.InterestMethod) (decimal.Decimal, error) {
	ear, err := effectiveAnnualFromPeriodic(rate, from, method)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return periodicFromEffectiveAnnual(ear, to, method)
}

func effectiveAnnualFromPeriodic(rate decimal.Decimal, from frequency.Frequency, method cashflow.InterestMethod) (decimal.Decimal, error) {
	if from == frequency.Continuous {
		return decimalx.Exp(rate).Sub(decimal.NewFromInt(1)), nil
	}
	pn, err := frequency.PeriodsPerYear(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if method == cashflow.InterestSimple {
		return rate.Mul(decimal.NewFromInt(int64(pn))), nil
	}
	base := decimal.NewFromInt(1).Add(rate)
	return decimalx.Pow(base, decimal.NewFromInt(int64(pn))).Sub(decimal.NewFromInt(1)), nil
}

func periodicFromEffectiveAnnual(ear decimal.Decimal, to frequency.Frequency, method cashflow.InterestMethod) (decimal.Decimal, error) {
	if to == frequency.Continuous {
		return decimalx.Ln(decimal.NewFromInt(1).Add(ear)), nil
	}
	pt, err := frequency.PeriodsPerYear(to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if method == cashflow.InterestSimple {
		return decimalx.DivGuarded(ear, decimal.NewFromInt(int64(pt))), nil
	}
	base := decimal.NewFromInt(1).Add(ear)
	exponent := decimalx.DivGuarded(decimal.NewFromInt(1), decimal.NewFromInt(int64(pt)))
	return decimalx.Pow(base, exponent).Sub(decimal.NewFromInt(1)), nil
}

// EAR computes the effective annual rate from a periodic rate, spec §4.7:
// EAR = (1 + periodic)^periods_per_year - 1.
func EAR(periodic decimal.Decimal, periodsPerYear int) decimal.Decimal {
	base := decimal.NewFromInt(1).Add(periodic)
	return decimalx.Pow(base, decimal.NewFromInt(int64(periodsPerYear))).Sub(decimal.NewFromInt(1))
}

// DR computes the daily rate from a periodic rate and the number of days in
// that period, spec §4.7: DR = (1+periodic)^(1/days_in_period) - 1.
func DR(periodic decimal.Decimal, daysInPeriod int) decimal.Decimal {
	if daysInPeriod <= 0 {
		return decimal.Zero
	}
	base := decimal.NewFromInt(1).Add(periodic)
	exponent := decimalx.DivGuarded(decimal.NewFromInt(1), decimal.NewFromInt(int64(daysInPeriod)))
	return decimalx.Pow(base, exponent).Sub(decimal.NewFromInt(1))
}

// PR is the periodic rate statistic, emitted as-is (spec §4.7).
func PR(periodic decimal.Decimal) decimal.Decimal {
	return periodic
}

// rollingStatistics computes EAR/DR/PR for the interest-change state st and
// writes them into the result under their well-known names, when the
// originating event requested RollingStatistics (spec §3 interest-change
// "rolling statistics block").
func rollingStatistics(result *cashflow.BalanceResult, st state, daysInPeriod int) error {
	if !st.set || st.periodsPerYear <= 0 {
		return amfnerr.New(amfnerr.FrequencyInvalid, "rolling statistics require a fixed periods-per-year accrual frequency")
	}
	periodic := decimalx.DivGuarded(st.rate, decimal.NewFromInt(int64(st.periodsPerYear)))
	result.Statistics["PR"] = PR(periodic)
	result.Statistics["EAR"] = EAR(periodic, st.periodsPerYear)
	result.Statistics["DR"] = DR(periodic, daysInPeriod)
	return nil
}
