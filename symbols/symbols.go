// Package symbols implements the named-parameter and descriptor tables of
// spec §4.4: scoped, name-keyed mappings with a well-defined lookup chain,
// built as a stack of flat maps rather than an inheritance hierarchy (spec
// §9 design note).
package symbols

import "github.com/shopspring/decimal"

// ParamType is the closed set of parameter value types.
type ParamType string

const (
	ParamInteger ParamType = "integer"
	ParamFloat   ParamType = "float"
	ParamString  ParamType = "string"
)

// Parameter is a named, typed local symbol attached to an event or to a
// preferences block.
type Parameter struct {
	Name  string
	Type  ParamType
	Value interface{} // int64, decimal.Decimal, or string, matching Type
}

// DescriptorType distinguishes a descriptor's payload shape; the engine
// treats it as opaque metadata beyond the value it carries.
type DescriptorType string

// Descriptor is a propagatable, named key/value pair attached to an event.
// Group+Name forms the lookup key; Code is a caller-defined sub-classifier
// (e.g. a GL account code) carried through unchanged.
type Descriptor struct {
	Group          string
	Name           string
	Code           string
	Type           DescriptorType
	Value          string
	Propagate      bool
	Expression     string // optional; carried through unchanged, Value is not recomputed from it
}

// key is the (group, name) lookup key for a descriptor.
type key struct{ group, name string }

// DescriptorView is an immutable last-writer-wins snapshot of every
// propagating descriptor group visible at a point in the event stream. It is
// copied (not aliased) into each amortization element (spec invariant 4).
type DescriptorView struct {
	slots map[key]Descriptor
}

// NewDescriptorView returns an empty view.
func NewDescriptorView() DescriptorView {
	return DescriptorView{slots: map[key]Descriptor{}}
}

// Clone returns an independent copy of the view so that applying a new
// event's descriptors never mutates an already-emitted snapshot.
func (v DescriptorView) Clone() DescriptorView {
	cp := make(map[key]Descriptor, len(v.slots))
	for k, d := range v.slots {
		cp[k] = d
	}
	return DescriptorView{slots: cp}
}

// Apply folds a list of descriptors from one event into the view.
// Non-propagating descriptors are ignored here; to apply them to one
// event's own elements, pass them to Snapshot as transient descriptors.
// Propagating descriptors become the new last writer for their group and
// remain visible to every later element (spec invariant 5).
func (v DescriptorView) Apply(descriptors []Descriptor) DescriptorView {
	next := v.Clone()
	for _, d := range descriptors {
		if d.Propagate {
			next.slots[key{d.Group, d.Name}] = d
		}
	}
	return next
}

// Snapshot returns a flat view including both the propagating state and a
// caller-supplied set of transient (non-propagating) descriptors that apply
// to only the current element.
func (v DescriptorView) Snapshot(transient []Descriptor) []Descriptor {
	merged := make(map[key]Descriptor, len(v.slots)+len(transient))
	for k, d := range v.slots {
		merged[k] = d
	}
	for _, d := range transient {
		merged[key{d.Group, d.Name}] = d
	}
	out := make([]Descriptor, 0, len(merged))
	for _, d := range merged {
		out = append(out, d)
	}
	return out
}

// Get looks up a descriptor by group and name in the propagating state.
func (v DescriptorView) Get(group, name string) (Descriptor, bool) {
	d, ok := v.slots[key{group, name}]
	return d, ok
}

// Scope is the expression identifier lookup chain: event-local parameters
// → cashflow preferences parameters → global preferences parameters. It
// never reaches into builtins (balance, accrued-balance, ...) directly;
// those are supplied by the expr package's Resolver, of which Scope is one
// layer.
type Scope struct {
	layers []map[string]Parameter
}

// NewScope builds an empty scope chain; layers added by Push sit innermost
// (layer 0 is innermost / highest priority).
func NewScope() *Scope {
	return &Scope{layers: []map[string]Parameter{}}
}

// Push adds a new, innermost layer.
func (s *Scope) Push(params []Parameter) {
	m := make(map[string]Parameter, len(params))
	for _, p := range params {
		m[p.Name] = p
	}
	s.layers = append([]map[string]Parameter{m}, s.layers...)
}

// Pop removes the innermost layer.
func (s *Scope) Pop() {
	if len(s.layers) > 0 {
		s.layers = s.layers[1:]
	}
}

// Lookup resolves name through the layer stack, innermost first.
func (s *Scope) Lookup(name string) (Parameter, bool) {
	for _, layer := range s.layers {
		if p, ok := layer[name]; ok {
			return p, true
		}
	}
	return Parameter{}, false
}

// AsDecimal converts a Parameter to decimal.Decimal if its Type permits.
func (p Parameter) AsDecimal() (decimal.Decimal, bool) {
	switch p.Type {
	case ParamFloat:
		d, ok := p.Value.(decimal.Decimal)
		return d, ok
	case ParamInteger:
		i, ok := p.Value.(int64)
		if !ok {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromInt(i), true
	default:
		return decimal.Decimal{}, false
	}
}
