package iql

import "strings"

// Render returns canonical IQL text for a tree. Parsing the result yields a
// tree Equal to the input. Parentheses are emitted only where precedence or
// left-associativity requires them.
func Render(n Node) string {
	var b strings.Builder
	render(&b, n)
	return b.String()
}

// Binding strength, loosest first.
const (
	precOr = iota + 1
	precAnd
	precNot
	precAtom
)

func precedence(n Node) int {
	switch n.(type) {
	case *Or:
		return precOr
	case *And:
		return precAnd
	case *Not:
		return precNot
	default:
		return precAtom
	}
}

func render(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		b.WriteString(n.Value.IQL())
	case *Call:
		b.WriteString(n.Name)
		b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Value.IQL())
		}
		b.WriteByte(')')
	case *And:
		renderBinary(b, n.Left, n.Right, " and ", precAnd)
	case *Or:
		renderBinary(b, n.Left, n.Right, " or ", precOr)
	case *Not:
		b.WriteString("not ")
		renderOperand(b, n.Operand, precNot, false)
	case *Sequence:
		for i, c := range n.Calls {
			if i > 0 {
				b.WriteByte('\n')
			}
			render(b, c)
		}
	}
}

func renderBinary(b *strings.Builder, left, right Node, op string, prec int) {
	renderOperand(b, left, prec, false)
	b.WriteString(op)
	renderOperand(b, right, prec, true)
}

// renderOperand wraps child in parentheses when it binds looser than its
// parent, or equally tight on the right of a left-associative operator.
func renderOperand(b *strings.Builder, child Node, parent int, right bool) {
	p := precedence(child)
	if p < parent || (right && p == parent && parent != precNot) {
		b.WriteByte('(')
		render(b, child)
		b.WriteByte(')')
		return
	}
	render(b, child)
}
