package iql

// Node is a sealed interface over the IQL syntax tree.
//
// Node types:
//   - *Call: name(args...) with literal arguments only
//   - *Literal: a literal argument
//   - *And, *Or: binary combinators (filters mode only)
//   - *Not: negation (filters mode only)
//   - *Sequence: ordered calls (actions mode top level only)
//
// Trees are built by Parse, never shared between parses and never mutated
// afterwards.
type Node interface {
	Pos() Span
	node() // Marker method - seals interface to this package
}

// Literal is a literal argument of a call.
type Literal struct {
	Value Value
	Span  Span
}

func (n *Literal) Pos() Span { return n.Span }
func (*Literal) node()       {}

// Call is a named operation invocation.
type Call struct {
	Name     string
	NameSpan Span
	Args     []*Literal
	Span     Span // Name through closing parenthesis
}

func (n *Call) Pos() Span { return n.Span }
func (*Call) node()       {}

// Values returns the decoded argument values in order.
func (n *Call) Values() []Value {
	vals := make([]Value, len(n.Args))
	for i, a := range n.Args {
		vals[i] = a.Value
	}
	return vals
}

// And is the conjunction of two filter expressions.
type And struct {
	Left  Node
	Right Node
}

func (n *And) Pos() Span { return join(n.Left.Pos(), n.Right.Pos()) }
func (*And) node()       {}

// Or is the disjunction of two filter expressions.
type Or struct {
	Left  Node
	Right Node
}

func (n *Or) Pos() Span { return join(n.Left.Pos(), n.Right.Pos()) }
func (*Or) node()       {}

// Not negates a filter expression.
type Not struct {
	Operand Node
	Span    Span // "not" keyword through end of operand
}

func (n *Not) Pos() Span { return n.Span }
func (*Not) node()       {}

// Sequence is the top level of an actions program.
type Sequence struct {
	Calls []*Call
}

func (n *Sequence) Pos() Span {
	if len(n.Calls) == 0 {
		return Span{}
	}
	return join(n.Calls[0].Span, n.Calls[len(n.Calls)-1].Span)
}

func (*Sequence) node() {}

// Equal reports whether two trees are structurally equal. Spans are ignored.
func Equal(a, b Node) bool {
	switch an := a.(type) {
	case *Literal:
		bn, ok := b.(*Literal)
		return ok && EqualValues(an.Value, bn.Value)
	case *Call:
		bn, ok := b.(*Call)
		if !ok || an.Name != bn.Name || len(an.Args) != len(bn.Args) {
			return false
		}
		for i := range an.Args {
			if !Equal(an.Args[i], bn.Args[i]) {
				return false
			}
		}
		return true
	case *And:
		bn, ok := b.(*And)
		return ok && Equal(an.Left, bn.Left) && Equal(an.Right, bn.Right)
	case *Or:
		bn, ok := b.(*Or)
		return ok && Equal(an.Left, bn.Left) && Equal(an.Right, bn.Right)
	case *Not:
		bn, ok := b.(*Not)
		return ok && Equal(an.Operand, bn.Operand)
	case *Sequence:
		bn, ok := b.(*Sequence)
		if !ok || len(an.Calls) != len(bn.Calls) {
			return false
		}
		for i := range an.Calls {
			if !Equal(an.Calls[i], bn.Calls[i]) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}
