package expr

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amfn-io/amfn/amfnerr"
	"github.com/amfn-io/amfn/decimalx"
)

// DefaultMaxDepth is the recursion depth cap of spec §5: "limits recursion
// depth (default 128) to prevent pathological inputs."
const DefaultMaxDepth = 128

// Resolver resolves a bare identifier through the scope chain described in
// spec §4.3 (event-local parameters → cashflow preferences → global
// preferences → built-in symbols). ok=false means "unresolved", which the
// Evaluator turns into ExprUnresolved — non-fatal on a first expansion pass,
// fatal once the caller says the pass is final.
type Resolver interface {
	Resolve(name string) (Value, bool)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(name string) (Value, bool)

func (f ResolverFunc) Resolve(name string) (Value, bool) { return f(name) }

// Evaluator walks an AST against a Resolver.
type Evaluator struct {
	Resolver Resolver
	MaxDepth int
	// Final marks the last resolution pass: an unresolved identifier is
	// returned as an *amfnerr.Error with kind ExprUnresolved regardless,
	// but only a Final evaluator should treat that as fatal — expand
	// inspects the Kind itself rather than trusting Final here, so Final
	// is informational for callers that want to short-circuit retries.
	Final bool
}

// NewEvaluator builds an Evaluator with the default recursion depth.
func NewEvaluator(r Resolver) *Evaluator {
	return &Evaluator{Resolver: r, MaxDepth: DefaultMaxDepth}
}

// Eval evaluates node against e's resolver.
func (e *Evaluator) Eval(node Node) (Value, error) {
	return e.eval(node, 0)
}

func (e *Evaluator) eval(node Node, depth int) (Value, error) {
	if depth > e.MaxDepth {
		return Value{}, amfnerr.New(amfnerr.ExprRecursion, "expression recursion exceeded max depth %d", e.MaxDepth)
	}

	switch n := node.(type) {
	case LiteralNode:
		return n.Value, nil

	case IdentNode:
		v, ok := e.Resolver.Resolve(n.Name)
		if !ok {
			return Value{}, amfnerr.New(amfnerr.ExprUnresolved, "unresolved identifier %q", n.Name)
		}
		return v, nil

	case UnaryNode:
		return e.evalUnary(n, depth)

	case BinaryNode:
		return e.evalBinary(n, depth)

	case CallNode:
		return e.evalCall(n, depth)

	default:
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "unknown node type %T", node)
	}
}

func (e *Evaluator) evalUnary(n UnaryNode, depth int) (Value, error) {
	v, err := e.eval(n.Operand, depth+1)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case "-":
		if v.Kind != KindDecimal {
			return Value{}, amfnerr.New(amfnerr.ExprTypeError, "unary - requires a decimal operand, got %s", v.Kind)
		}
		return DecimalValue(v.Dec.Neg()), nil
	case "not":
		return BoolAsDecimal(!v.Truthy()), nil
	default:
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "unknown unary operator %q", n.Op)
	}
}

func (e *Evaluator) evalBinary(n BinaryNode, depth int) (Value, error) {
	// and/or short-circuit: the right side is only evaluated when needed.
	if n.Op == "and" || n.Op == "or" {
		left, err := e.eval(n.Left, depth+1)
		if err != nil {
			return Value{}, err
		}
		if n.Op == "and" && !left.Truthy() {
			return BoolAsDecimal(false), nil
		}
		if n.Op == "or" && left.Truthy() {
			return BoolAsDecimal(true), nil
		}
		right, err := e.eval(n.Right, depth+1)
		if err != nil {
			return Value{}, err
		}
		return BoolAsDecimal(right.Truthy()), nil
	}

	left, err := e.eval(n.Left, depth+1)
	if err != nil {
		return Value{}, err
	}
	right, err := e.eval(n.Right, depth+1)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case "+", "-", "*", "/":
		return evalArith(n.Op, left, right)
	case "<", "<=", "=", "!=", ">=", ">":
		return evalCompare(n.Op, left, right)
	case "&":
		return StringValue(stringify(left) + stringify(right)), nil
	default:
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "unknown binary operator %q", n.Op)
	}
}

func evalArith(op string, left, right Value) (Value, error) {
	if left.Kind != KindDecimal || right.Kind != KindDecimal {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "arithmetic operator %q requires decimal operands, got %s and %s", op, left.Kind, right.Kind)
	}
	switch op {
	case "+":
		return DecimalValue(left.Dec.Add(right.Dec)), nil
	case "-":
		return DecimalValue(left.Dec.Sub(right.Dec)), nil
	case "*":
		return DecimalValue(left.Dec.Mul(right.Dec)), nil
	case "/":
		if right.Dec.IsZero() {
			return Value{}, amfnerr.New(amfnerr.ExprArithError, "division by zero")
		}
		return DecimalValue(decimalx.DivGuarded(left.Dec, right.Dec)), nil
	default:
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "unknown arithmetic operator %q", op)
	}
}

func evalCompare(op string, left, right Value) (Value, error) {
	if left.Kind != right.Kind {
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "cannot compare %s with %s", left.Kind, right.Kind)
	}
	var cmp int
	switch left.Kind {
	case KindDecimal:
		cmp = left.Dec.Cmp(right.Dec)
	case KindDate:
		switch {
		case left.Date.Before(right.Date):
			cmp = -1
		case left.Date.After(right.Date):
			cmp = 1
		default:
			cmp = 0
		}
	case KindString:
		cmp = strings.Compare(left.Str, right.Str)
	case KindBool:
		cmp = boolCmp(left.Bool, right.Bool)
	default:
		return Value{}, amfnerr.New(amfnerr.ExprTypeError, "uncomparable kind %s", left.Kind)
	}

	var result bool
	switch op {
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case "=":
		result = cmp == 0
	case "!=":
		result = cmp != 0
	case ">=":
		result = cmp >= 0
	case ">":
		result = cmp > 0
	}
	return BoolAsDecimal(result), nil
}

func boolCmp(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func stringify(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindDecimal:
		return v.Dec.String()
	case KindDate:
		return v.Date.String()
	case KindBool:
		if v.Bool {
			return "1"
		}
		return "0"
	default:
		return ""
	}
}

func (e *Evaluator) evalCall(n CallNode, depth int) (Value, error) {
	// if(cond, a, b) short-circuits: only the taken branch is evaluated,
	// so a forward-reference in the untaken branch never forces a
	// premature ExprUnresolved.
	if n.Name == "if" {
		if len(n.Args) != 3 {
			return Value{}, amfnerr.New(amfnerr.ExprTypeError, "if() requires exactly 3 arguments, got %d", len(n.Args))
		}
		cond, err := e.eval(n.Args[0], depth+1)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return e.eval(n.Args[1], depth+1)
		}
		return e.eval(n.Args[2], depth+1)
	}

	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := e.eval(a, depth+1)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return callBuiltin(n.Name, args)
}

func requireDecimal(args []Value, i int, fn string) (decimal.Decimal, error) {
	if i >= len(args) || args[i].Kind != KindDecimal {
		return decimal.Decimal{}, amfnerr.New(amfnerr.ExprTypeError, "%s() argument %d must be decimal", fn, i)
	}
	return args[i].Dec, nil
}

func requireString(args []Value, i int, fn string) (string, error) {
	if i >= len(args) || args[i].Kind != KindString {
		return "", amfnerr.New(amfnerr.ExprTypeError, "%s() argument %d must be a string", fn, i)
	}
	return args[i].Str, nil
}
