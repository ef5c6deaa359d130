// Package expr implements the embedded expression language of spec §4.3: a
// small tagged-variant AST evaluated by a Pratt (precedence-climbing)
// parser, used throughout the engine to compute event dates, periods and
// values symbolically.
package expr

import (
	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/calendar"
)

// Kind tags the dynamic type carried by a Value.
type Kind int

const (
	KindDecimal Kind = iota
	KindString
	KindDate
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is the tagged-variant result of evaluating a node. Only the field
// matching Kind is meaningful.
type Value struct {
	Kind Kind
	Dec  decimal.Decimal
	Str  string
	Date calendar.Date
	Bool bool
}

// DecimalValue, StringValue, DateValue, BoolValue construct tagged Values.
func DecimalValue(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Dec: d} }
func StringValue(s string) Value           { return Value{Kind: KindString, Str: s} }
func DateValue(d calendar.Date) Value      { return Value{Kind: KindDate, Date: d} }
func BoolValue(b bool) Value               { return Value{Kind: KindBool, Bool: b} }

// Truthy converts a Value to a boolean per the 0/1 convention comparisons
// use (spec §4.3): a decimal is truthy iff non-zero, a bool is itself.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindDecimal:
		return !v.Dec.IsZero()
	default:
		return false
	}
}

// BoolAsDecimal returns the 0/1 decimal form of a comparison/logical
// result, matching "comparison ... returning 0/1" in spec §4.3.
func BoolAsDecimal(b bool) Value {
	if b {
		return DecimalValue(decimal.NewFromInt(1))
	}
	return DecimalValue(decimal.Zero)
}
