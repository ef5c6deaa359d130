// Package cashflowio is the JSON boundary shared by the two ambient entry
// points (A5 cmd/amfnserver, A6 cmd/amfn): it decodes a cashflow description
// into engine.Cashflow with no schema validation of its own — a malformed
// document surfaces as an ordinary amfnerr.SchemaInvalid, the same error
// kind every other core component uses.
package cashflowio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/cashflow"
	"github.com/amfn-io/amfn/engine"
	"github.com/amfn-io/amfn/frequency"
	"github.com/amfn-io/amfn/fx"
	"github.com/amfn-io/amfn/symbols"
)

type ParameterDoc struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

func (p ParameterDoc) toParameter() (symbols.Parameter, error) {
	switch symbols.ParamType(p.Type) {
	case symbols.ParamInteger:
		n, ok := p.Value.(float64)
		if !ok {
			return symbols.Parameter{}, fmt.Errorf("parameter %q: integer value must be numeric", p.Name)
		}
		return symbols.Parameter{Name: p.Name, Type: symbols.ParamInteger, Value: int64(n)}, nil
	case symbols.ParamFloat:
		s, ok := p.Value.(string)
		if !ok {
			if n, ok := p.Value.(float64); ok {
				return symbols.Parameter{Name: p.Name, Type: symbols.ParamFloat, Value: decimal.NewFromFloat(n)}, nil
			}
			return symbols.Parameter{}, fmt.Errorf("parameter %q: float value must be numeric or a decimal string", p.Name)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return symbols.Parameter{}, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		return symbols.Parameter{Name: p.Name, Type: symbols.ParamFloat, Value: d}, nil
	case symbols.ParamString:
		s, _ := p.Value.(string)
		return symbols.Parameter{Name: p.Name, Type: symbols.ParamString, Value: s}, nil
	default:
		return symbols.Parameter{}, fmt.Errorf("parameter %q: unknown type %q", p.Name, p.Type)
	}
}

type DescriptorDoc struct {
	Group      string `json:"group"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	Propagate  bool   `json:"propagate"`
	Expression string `json:"expression"`
}

func (d DescriptorDoc) toDescriptor() symbols.Descriptor {
	return symbols.Descriptor{
		Group:      d.Group,
		Name:       d.Name,
		Code:       d.Code,
		Type:       symbols.DescriptorType(d.Type),
		Value:      d.Value,
		Propagate:  d.Propagate,
		Expression: d.Expression,
	}
}

type PrincipalChangeDoc struct {
	PrincipalType  string `json:"principal_type"`
	Auxiliary      bool   `json:"auxiliary"`
	Passive        bool   `json:"passive"`
	PrincipalFirst bool   `json:"principal_first"`
	Statistics     bool   `json:"statistics"`
	EOM            bool   `json:"eom"`
}

type InterestChangeDoc struct {
	Rate               string `json:"rate"`
	DayCountBasis      string `json:"day_count_basis"`
	DaysInYear         int    `json:"days_in_year"`
	InterestMethod     string `json:"interest_method"`
	RoundBalance       string `json:"round_balance"`
	RoundDecimalDigits int32  `json:"round_decimal_digits"`
	EffectiveFrequency string `json:"effective_frequency"`
	InterestFrequency  string `json:"interest_frequency"`
	RollingStatistics  bool   `json:"rolling_statistics"`
}

type StatisticValueDoc struct {
	Name  string `json:"name"`
	Final bool   `json:"final"`
	EOM   bool   `json:"eom"`
}

type CurrentValueDoc struct {
	EOM     bool `json:"eom"`
	Passive bool `json:"passive"`
	Present bool `json:"present"`
}

type EventDoc struct {
	EventDate        string `json:"event_date"`
	EventDateExpr    string `json:"event_date_expr"`
	EventValue       string `json:"event_value"`
	EventValueExpr   string `json:"event_value_expr"`
	ExprBalance      bool   `json:"expr_balance"`
	EventPeriods     int    `json:"event_periods"`
	EventPeriodsExpr string `json:"event_periods_expr"`
	Frequency        string `json:"frequency"`
	Intervals        int    `json:"intervals"`
	SortOrder        int    `json:"sort_order"`
	SkipMask         uint64 `json:"skip_mask"`

	Parameters  []ParameterDoc  `json:"parameters"`
	Descriptors []DescriptorDoc `json:"descriptors"`

	PrincipalChange *PrincipalChangeDoc `json:"principal_change,omitempty"`
	InterestChange  *InterestChangeDoc  `json:"interest_change,omitempty"`
	StatisticValue  *StatisticValueDoc  `json:"statistic_value,omitempty"`
	CurrentValue    *CurrentValueDoc    `json:"current_value,omitempty"`
}

func (e EventDoc) toEvent() (cashflow.Event, error) {
	params := make([]symbols.Parameter, 0, len(e.Parameters))
	for _, p := range e.Parameters {
		conv, err := p.toParameter()
		if err != nil {
			return cashflow.Event{}, err
		}
		params = append(params, conv)
	}
	descriptors := make([]symbols.Descriptor, 0, len(e.Descriptors))
	for _, d := range e.Descriptors {
		descriptors = append(descriptors, d.toDescriptor())
	}

	ext, err := e.toExtension()
	if err != nil {
		return cashflow.Event{}, err
	}

	return cashflow.Event{
		EventDate:        e.EventDate,
		EventDateExpr:    e.EventDateExpr,
		EventValue:       e.EventValue,
		EventValueExpr:   e.EventValueExpr,
		ExprBalance:      e.ExprBalance,
		EventPeriods:     e.EventPeriods,
		EventPeriodsExpr: e.EventPeriodsExpr,
		Frequency:        frequency.Frequency(e.Frequency),
		Intervals:        e.Intervals,
		SortOrder:        e.SortOrder,
		SkipMask:         cashflow.SkipMask(e.SkipMask),
		Parameters:       params,
		Descriptors:      descriptors,
		Extension:        ext,
	}, nil
}

func (e EventDoc) toExtension() (cashflow.Extension, error) {
	set := 0
	var ext cashflow.Extension
	if e.PrincipalChange != nil {
		set++
		pc := e.PrincipalChange
		ext = cashflow.PrincipalChange{
			PrincipalType:  cashflow.PrincipalType(pc.PrincipalType),
			Auxiliary:      pc.Auxiliary,
			Passive:        pc.Passive,
			PrincipalFirst: pc.PrincipalFirst,
			Statistics:     pc.Statistics,
			EOM:            pc.EOM,
		}
	}
	if e.InterestChange != nil {
		set++
		ic := e.InterestChange
		rate, err := decimal.NewFromString(ic.Rate)
		if err != nil {
			return nil, fmt.Errorf("interest_change.rate: %w", err)
		}
		ext = cashflow.InterestChange{
			Rate:               rate,
			DayCountBasis:      ic.DayCountBasis,
			DaysInYear:         ic.DaysInYear,
			InterestMethod:     cashflow.InterestMethod(ic.InterestMethod),
			RoundBalance:       ic.RoundBalance,
			RoundDecimalDigits: ic.RoundDecimalDigits,
			EffectiveFrequency: frequency.Frequency(ic.EffectiveFrequency),
			InterestFrequency:  frequency.Frequency(ic.InterestFrequency),
			RollingStatistics:  ic.RollingStatistics,
		}
	}
	if e.StatisticValue != nil {
		set++
		sv := e.StatisticValue
		ext = cashflow.StatisticValue{Name: sv.Name, Final: sv.Final, EOM: sv.EOM}
	}
	if e.CurrentValue != nil {
		set++
		cv := e.CurrentValue
		ext = cashflow.CurrentValue{EOM: cv.EOM, Passive: cv.Passive, Present: cv.Present}
	}
	if set != 1 {
		return nil, fmt.Errorf("event must carry exactly one extension, got %d", set)
	}
	return ext, nil
}

type FXPairDoc struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

func (p FXPairDoc) toPair() (fx.Pair, error) {
	v, err := decimal.NewFromString(p.Value)
	if err != nil {
		return fx.Pair{}, fmt.Errorf("fx pair %s/%s: %w", p.From, p.To, err)
	}
	return fx.Pair{From: p.From, To: p.To, Value: v}, nil
}

// CashflowDoc is the top-level document both ambient entry points decode a
// cashflow request or batch file from.
type CashflowDoc struct {
	Events              []EventDoc      `json:"events"`
	GlobalPreferences   []ParameterDoc  `json:"global_preferences"`
	CashflowPreferences []ParameterDoc  `json:"cashflow_preferences"`
	Descriptors         []DescriptorDoc `json:"descriptors"`
	ExchangeRates       []FXPairDoc     `json:"exchange_rates"`
}

// ToCashflow converts the wire document into engine.Cashflow, the input
// shape of every core pipeline operation.
func (c CashflowDoc) ToCashflow() (engine.Cashflow, error) {
	events := make([]cashflow.Event, 0, len(c.Events))
	for i, e := range c.Events {
		ev, err := e.toEvent()
		if err != nil {
			return engine.Cashflow{}, amfnerr.WithEvent(amfnerr.SchemaInvalid, i, "event %d: %v", i, err)
		}
		events = append(events, ev)
	}

	global := make([]symbols.Parameter, 0, len(c.GlobalPreferences))
	for _, p := range c.GlobalPreferences {
		conv, err := p.toParameter()
		if err != nil {
			return engine.Cashflow{}, amfnerr.New(amfnerr.SchemaInvalid, "global preference: %v", err)
		}
		global = append(global, conv)
	}
	cfPrefs := make([]symbols.Parameter, 0, len(c.CashflowPreferences))
	for _, p := range c.CashflowPreferences {
		conv, err := p.toParameter()
		if err != nil {
			return engine.Cashflow{}, amfnerr.New(amfnerr.SchemaInvalid, "cashflow preference: %v", err)
		}
		cfPrefs = append(cfPrefs, conv)
	}
	descriptors := make([]symbols.Descriptor, 0, len(c.Descriptors))
	for _, d := range c.Descriptors {
		descriptors = append(descriptors, d.toDescriptor())
	}

	var rates *fx.Graph
	if len(c.ExchangeRates) > 0 {
		pairs := make([]fx.Pair, 0, len(c.ExchangeRates))
		for _, p := range c.ExchangeRates {
			pair, err := p.toPair()
			if err != nil {
				return engine.Cashflow{}, amfnerr.New(amfnerr.SchemaInvalid, "exchange rate: %v", err)
			}
			pairs = append(pairs, pair)
		}
		rates = fx.NewGraph(pairs)
	}

	return engine.Cashflow{
		Events:              cashflow.NewEventList(events),
		GlobalPreferences:   global,
		CashflowPreferences: cfPrefs,
		Descriptors:         descriptors,
		Rates:               rates,
	}, nil
}
