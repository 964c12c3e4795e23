package query

import (
	"github.com/roach88/viewql/internal/iql"
)

// RenderFilter returns IQL text for a bound filter. Defaults filled in
// during binding appear as explicit arguments.
func RenderFilter(f Filter) string {
	return iql.Render(filterSyntax(f))
}

// RenderActions returns IQL text for bound actions, one call per line.
func RenderActions(actions Actions) string {
	seq := &iql.Sequence{Calls: make([]*iql.Call, len(actions))}
	for i, a := range actions {
		seq.Calls[i] = callSyntax(a)
	}
	return iql.Render(seq)
}

func filterSyntax(f Filter) iql.Node {
	switch f := f.(type) {
	case *Leaf:
		return callSyntax(f.Call)
	case *And:
		return &iql.And{Left: filterSyntax(f.Left), Right: filterSyntax(f.Right)}
	case *Or:
		return &iql.Or{Left: filterSyntax(f.Left), Right: filterSyntax(f.Right)}
	case *Not:
		return &iql.Not{Operand: filterSyntax(f.Operand)}
	default:
		return nil
	}
}

func callSyntax(c BoundCall) *iql.Call {
	call := &iql.Call{Name: c.Op.Name, Span: c.Span}
	for _, v := range c.Args {
		call.Args = append(call.Args, &iql.Literal{Value: v})
	}
	return call
}
