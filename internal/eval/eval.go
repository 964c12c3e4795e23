package eval

import (
	"context"
	"fmt"

	"github.com/roach88/viewql/internal/query"
)

// FilterHost realises filter calls as predicates of type F and combines
// them.
type FilterHost[F any] interface {
	Filter(ctx context.Context, call query.BoundCall) (F, error)
	And(left, right F) F
	Or(left, right F) F
	Not(operand F) F
}

// ActionHost applies action calls to a query state of type Q.
type ActionHost[Q any] interface {
	Action(ctx context.Context, call query.BoundCall, q Q) (Q, error)
}

// Filters evaluates a filter tree against host. The first failing leaf
// stops evaluation; its error is wrapped in a *HostInvocationError whose
// Index counts leaves in source order.
func Filters[F any](ctx context.Context, f query.Filter, host FilterHost[F]) (F, error) {
	w := &filterWalker[F]{host: host}
	return w.walk(ctx, f)
}

type filterWalker[F any] struct {
	host  FilterHost[F]
	index int
}

func (w *filterWalker[F]) walk(ctx context.Context, f query.Filter) (F, error) {
	var zero F
	switch n := f.(type) {
	case *query.Leaf:
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		idx := w.index
		w.index++
		pred, err := w.host.Filter(ctx, n.Call)
		if err != nil {
			return zero, wrapHostError(n.Call, idx, err)
		}
		return pred, nil

	case *query.And:
		left, right, err := w.pair(ctx, n.Left, n.Right)
		if err != nil {
			return zero, err
		}
		return w.host.And(left, right), nil

	case *query.Or:
		left, right, err := w.pair(ctx, n.Left, n.Right)
		if err != nil {
			return zero, err
		}
		return w.host.Or(left, right), nil

	case *query.Not:
		operand, err := w.walk(ctx, n.Operand)
		if err != nil {
			return zero, err
		}
		return w.host.Not(operand), nil

	default:
		return zero, fmt.Errorf("evaluate filters: unexpected node %T", f)
	}
}

func (w *filterWalker[F]) pair(ctx context.Context, l, r query.Filter) (F, F, error) {
	var zero F
	left, err := w.walk(ctx, l)
	if err != nil {
		return zero, zero, err
	}
	right, err := w.walk(ctx, r)
	if err != nil {
		return zero, zero, err
	}
	return left, right, nil
}

// Actions applies actions to initial in order and returns the final
// state. On failure the state reached so far is discarded.
func Actions[Q any](ctx context.Context, actions query.Actions, host ActionHost[Q], initial Q) (Q, error) {
	q := initial
	for i, call := range actions {
		if err := ctx.Err(); err != nil {
			var zero Q
			return zero, err
		}
		next, err := host.Action(ctx, call, q)
		if err != nil {
			var zero Q
			return zero, wrapHostError(call, i, err)
		}
		q = next
	}
	return q, nil
}
