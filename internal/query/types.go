package query

import (
	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/registry"
)

// Query is a bound IQL program: a Filter tree or Actions.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Filter is a bound filters expression.
//
// Filter types:
//   - *Leaf: one bound filter call
//   - *And, *Or: binary combinators
//   - *Not: negation
//
// Child order matches the source; evaluation relies on it.
type Filter interface {
	Query
	filterNode() // Marker method - seals interface to this package
}

// Leaf is a single filter call.
type Leaf struct {
	Call BoundCall
}

func (*Leaf) queryNode()  {}
func (*Leaf) filterNode() {}

// And is a conjunction of two filters.
type And struct {
	Left  Filter
	Right Filter
}

func (*And) queryNode()  {}
func (*And) filterNode() {}

// Or is a disjunction of two filters.
type Or struct {
	Left  Filter
	Right Filter
}

func (*Or) queryNode()  {}
func (*Or) filterNode() {}

// Not negates a filter.
type Not struct {
	Operand Filter
}

func (*Not) queryNode()  {}
func (*Not) filterNode() {}

// Actions is an ordered sequence of bound action calls. Order is source
// order and is significant.
type Actions []BoundCall

func (Actions) queryNode() {}

// BoundCall is a call resolved against a signature, with arguments
// coerced to the declared parameter types and defaults filled in.
//
// Args holds one value per fixed parameter followed by any variadic
// arguments.
type BoundCall struct {
	Op   *registry.Signature
	Args Args
	Span iql.Span
}

// Name returns the operation name.
func (c BoundCall) Name() string {
	return c.Op.Name
}

// Arg returns the value bound to the named fixed parameter.
func (c BoundCall) Arg(name string) (iql.Value, bool) {
	for i, p := range c.Op.Fixed() {
		if p.Name == name {
			return c.Args[i], true
		}
	}
	return nil, false
}

// Rest returns the variadic arguments, if any.
func (c BoundCall) Rest() Args {
	return c.Args.Variadic(len(c.Op.Fixed()))
}

// Args are the bound argument values of a call. Accessors return the zero
// value when the index is out of range or holds a different kind; binding
// guarantees the declared type so this only happens for None.
type Args []iql.Value

// Value returns the raw value at i, or nil.
func (a Args) Value(i int) iql.Value {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

func (a Args) String(i int) string {
	s, _ := a.Value(i).(iql.StringValue)
	return string(s)
}

func (a Args) Int(i int) int64 {
	n, _ := a.Value(i).(iql.IntValue)
	return int64(n)
}

// Float returns the value at i as float64. Integers are widened.
func (a Args) Float(i int) float64 {
	switch n := a.Value(i).(type) {
	case iql.FloatValue:
		return float64(n)
	case iql.IntValue:
		return float64(n)
	}
	return 0
}

func (a Args) Bool(i int) bool {
	b, _ := a.Value(i).(iql.BoolValue)
	return bool(b)
}

func (a Args) List(i int) iql.ListValue {
	l, _ := a.Value(i).(iql.ListValue)
	return l
}

// IsNull reports whether the value at i is None.
func (a Args) IsNull(i int) bool {
	v := a.Value(i)
	return v != nil && v.Kind() == iql.KindNull
}

// Variadic returns the arguments from index from onwards.
func (a Args) Variadic(from int) Args {
	if from >= len(a) {
		return nil
	}
	return a[from:]
}

// Native returns the plain Go values of all arguments.
func (a Args) Native() []any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = v.Native()
	}
	return out
}
