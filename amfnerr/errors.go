// Package amfnerr defines the stable error-kind taxonomy shared by every
// core package. Every operation either returns a value or one of these
// kinds; the core never panics or os.Exit's on bad input, it is up to the
// caller (the gin/cobra boundary adapters, or an embedder) to decide how to
// present a failure.
package amfnerr

import "fmt"

// Kind is a stable identifier for a class of error. Callers may switch on
// Kind without depending on the wording of Message.
type Kind string

const (
	SchemaInvalid          Kind = "SchemaInvalid"
	ExprParse               Kind = "ExprParse"
	ExprUnresolved          Kind = "ExprUnresolved"
	ExprTypeError           Kind = "ExprTypeError"
	ExprArithError          Kind = "ExprArithError"
	ExprRecursion           Kind = "ExprRecursion"
	FrequencyInvalid        Kind = "FrequencyInvalid"
	DateInvalid             Kind = "DateInvalid"
	DayCountUnsupported     Kind = "DayCountUnsupported"
	EventOrderingConflict   Kind = "EventOrderingConflict"
	InterestRateOutOfRange  Kind = "InterestRateOutOfRange"
	BalanceOverflow         Kind = "BalanceOverflow"
	SolverNoConvergence     Kind = "SolverNoConvergence"
	SolverTargetUnreachable Kind = "SolverTargetUnreachable"
	NoExchangeRate          Kind = "NoExchangeRate"
)

// Error is the concrete error type returned by every core package.
// EventIndex is -1 and ExprSpan is empty when not applicable.
type Error struct {
	Kind       Kind
	Message    string
	EventIndex int
	ExprSpan   string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.EventIndex >= 0 && e.ExprSpan != "":
		return fmt.Sprintf("%s: %s (event #%d, expr %q)", e.Kind, e.Message, e.EventIndex, e.ExprSpan)
	case e.EventIndex >= 0:
		return fmt.Sprintf("%s: %s (event #%d)", e.Kind, e.Message, e.EventIndex)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no event/expression context.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), EventIndex: -1}
}

// WithEvent attaches the originating event index.
func WithEvent(kind Kind, eventIndex int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), EventIndex: eventIndex}
}

// WithSpan attaches the originating event index and expression span.
func WithSpan(kind Kind, eventIndex int, span string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), EventIndex: eventIndex, ExprSpan: span}
}

// Wrap preserves cause for errors.Unwrap/errors.Is chains.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), EventIndex: -1, Cause: cause}
}

// Is reports whether err (or any error in its chain) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == k
}
