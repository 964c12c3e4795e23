package query

import (
	"fmt"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/registry"
)

// Bind binds a parsed tree in the given mode. ModeFilters yields a Filter,
// ModeActions yields Actions.
func Bind(node iql.Node, mode iql.Mode, reg *registry.Registry) (Query, error) {
	switch mode {
	case iql.ModeFilters:
		f, err := BindFilters(node, reg)
		if err != nil {
			return nil, err
		}
		return f, nil
	case iql.ModeActions:
		var seq *iql.Sequence
		switch n := node.(type) {
		case *iql.Sequence:
			seq = n
		case *iql.Call:
			seq = &iql.Sequence{Calls: []*iql.Call{n}}
		case *iql.And, *iql.Or:
			return nil, newUnsupported(registry.KindAction, "boolean operation", n)
		case *iql.Not:
			return nil, newUnsupported(registry.KindAction, "not operator", n)
		case nil:
			return nil, fmt.Errorf("bind actions: nil tree")
		default:
			return nil, newUnsupported(registry.KindAction, "expression", node)
		}
		actions, err := BindActions(seq, reg)
		if err != nil {
			return nil, err
		}
		return actions, nil
	default:
		return nil, fmt.Errorf("unsupported IQL mode: %v", mode)
	}
}

// BindFilters binds a filters tree. Calls are resolved against the
// registry's filters; the tree shape is preserved.
func BindFilters(node iql.Node, reg *registry.Registry) (Filter, error) {
	switch n := node.(type) {
	case *iql.Call:
		call, err := bindCall(registry.KindFilter, n, reg)
		if err != nil {
			return nil, err
		}
		return &Leaf{Call: call}, nil

	case *iql.And:
		left, right, err := bindPair(n.Left, n.Right, reg)
		if err != nil {
			return nil, err
		}
		return &And{Left: left, Right: right}, nil

	case *iql.Or:
		left, right, err := bindPair(n.Left, n.Right, reg)
		if err != nil {
			return nil, err
		}
		return &Or{Left: left, Right: right}, nil

	case *iql.Not:
		operand, err := BindFilters(n.Operand, reg)
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil

	case *iql.Sequence:
		return nil, newUnsupported(registry.KindFilter, "statement sequence", n)
	case *iql.Literal:
		return nil, newUnsupported(registry.KindFilter, "bare literal", n)
	case nil:
		return nil, fmt.Errorf("bind filters: nil tree")
	default:
		return nil, fmt.Errorf("bind filters: unexpected node %T", node)
	}
}

func bindPair(l, r iql.Node, reg *registry.Registry) (Filter, Filter, error) {
	left, err := BindFilters(l, reg)
	if err != nil {
		return nil, nil, err
	}
	right, err := BindFilters(r, reg)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// BindActions binds an actions sequence in order. The first failing call
// aborts binding.
func BindActions(seq *iql.Sequence, reg *registry.Registry) (Actions, error) {
	if seq == nil {
		return Actions{}, nil
	}
	out := make(Actions, 0, len(seq.Calls))
	for _, c := range seq.Calls {
		call, err := bindCall(registry.KindAction, c, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, call)
	}
	return out, nil
}

// bindCall resolves one call: lookup, arity, per-argument coercion and
// default filling.
func bindCall(kind registry.Kind, call *iql.Call, reg *registry.Registry) (BoundCall, error) {
	sig, ok := reg.Lookup(kind, call.Name)
	if !ok {
		return BoundCall{}, newNotFound(kind, call, reg)
	}

	lo, hi := sig.Arity()
	got := len(call.Args)
	if got < lo || (hi >= 0 && got > hi) {
		return BoundCall{}, newArity(sig, call)
	}

	fixed := sig.Fixed()
	args := make(Args, 0, max(len(fixed), got))

	for i, p := range fixed {
		if i >= got {
			args = append(args, p.Default)
			continue
		}
		v, ok := registry.Coerce(call.Args[i].Value, p.Type, p.Nullable)
		if !ok {
			return BoundCall{}, newTypeMismatch(sig, call, i, p)
		}
		args = append(args, v)
	}

	if rest, ok := sig.Rest(); ok {
		for i := len(fixed); i < got; i++ {
			v, ok := registry.Coerce(call.Args[i].Value, rest.Type, rest.Nullable)
			if !ok {
				return BoundCall{}, newTypeMismatch(sig, call, i, rest)
			}
			args = append(args, v)
		}
	}

	return BoundCall{Op: sig, Args: args, Span: call.Span}, nil
}
