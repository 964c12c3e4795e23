// Package view pairs operation signatures with the Go functions that
// realise them.
//
// A host declares each filter and action explicitly:
//
//	def, err := view.NewBuilder[Pred, *Select](combinators).
//		Filter(registry.Signature{Name: "by_city", Params: ...}, byCity).
//		Action(registry.Signature{Name: "first", Params: ...}, first).
//		Build()
//
// The resulting Definition carries the registry used for binding and
// dispatches bound calls to handlers by exact name. Calls bound against
// any other registry are refused.
package view

import (
	"context"
	"fmt"

	"github.com/roach88/viewql/internal/query"
	"github.com/roach88/viewql/internal/registry"
)

// FilterFunc realises one filter call as a predicate.
type FilterFunc[F any] func(ctx context.Context, args query.Args) (F, error)

// ActionFunc applies one action call to a query state.
type ActionFunc[Q any] func(ctx context.Context, args query.Args, q Q) (Q, error)

// Combinators are the host's predicate composition primitives.
type Combinators[F any] struct {
	And func(left, right F) F
	Or  func(left, right F) F
	Not func(operand F) F
}

// Builder collects signature and handler pairs.
type Builder[F, Q any] struct {
	combinators Combinators[F]
	reg         *registry.Builder
	filters     map[string]FilterFunc[F]
	actions     map[string]ActionFunc[Q]
	err         error
}

// NewBuilder starts a view declaration.
func NewBuilder[F, Q any](c Combinators[F]) *Builder[F, Q] {
	return &Builder[F, Q]{
		combinators: c,
		reg:         registry.NewBuilder(),
		filters:     make(map[string]FilterFunc[F]),
		actions:     make(map[string]ActionFunc[Q]),
	}
}

// Filter declares a filter and its handler.
func (b *Builder[F, Q]) Filter(sig registry.Signature, fn FilterFunc[F]) *Builder[F, Q] {
	if fn == nil && b.err == nil {
		b.err = fmt.Errorf("filter %q: nil handler", sig.Name)
	}
	b.reg.Filter(sig)
	if _, exists := b.filters[sig.Name]; !exists {
		b.filters[sig.Name] = fn
	}
	return b
}

// Action declares an action and its handler.
func (b *Builder[F, Q]) Action(sig registry.Signature, fn ActionFunc[Q]) *Builder[F, Q] {
	if fn == nil && b.err == nil {
		b.err = fmt.Errorf("action %q: nil handler", sig.Name)
	}
	b.reg.Action(sig)
	if _, exists := b.actions[sig.Name]; !exists {
		b.actions[sig.Name] = fn
	}
	return b
}

// Build validates the declarations. Duplicate names surface as the
// registry's DUPLICATE_OPERATION error.
func (b *Builder[F, Q]) Build() (*Definition[F, Q], error) {
	reg, err := b.reg.Build()
	if err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	if reg.Len(registry.KindFilter) > 0 {
		c := b.combinators
		if c.And == nil || c.Or == nil || c.Not == nil {
			return nil, fmt.Errorf("view declares filters but is missing And, Or or Not")
		}
	}

	def := &Definition[F, Q]{
		registry:    reg,
		combinators: b.combinators,
		filters:     make(map[string]FilterFunc[F], len(b.filters)),
		actions:     make(map[string]ActionFunc[Q], len(b.actions)),
	}
	for k, v := range b.filters {
		def.filters[k] = v
	}
	for k, v := range b.actions {
		def.actions[k] = v
	}
	return def, nil
}

// Definition is a built view. It is immutable and implements both
// eval.FilterHost[F] and eval.ActionHost[Q].
type Definition[F, Q any] struct {
	registry    *registry.Registry
	combinators Combinators[F]
	filters     map[string]FilterFunc[F]
	actions     map[string]ActionFunc[Q]
}

// Registry returns the signatures used to bind IQL against this view.
func (d *Definition[F, Q]) Registry() *registry.Registry {
	return d.registry
}

// Filter dispatches a bound filter call to its handler.
func (d *Definition[F, Q]) Filter(ctx context.Context, call query.BoundCall) (F, error) {
	if err := d.owns(registry.KindFilter, call); err != nil {
		var zero F
		return zero, err
	}
	return d.filters[call.Name()](ctx, call.Args)
}

func (d *Definition[F, Q]) And(left, right F) F { return d.combinators.And(left, right) }
func (d *Definition[F, Q]) Or(left, right F) F  { return d.combinators.Or(left, right) }
func (d *Definition[F, Q]) Not(operand F) F     { return d.combinators.Not(operand) }

// Action dispatches a bound action call to its handler.
func (d *Definition[F, Q]) Action(ctx context.Context, call query.BoundCall, q Q) (Q, error) {
	if err := d.owns(registry.KindAction, call); err != nil {
		var zero Q
		return zero, err
	}
	return d.actions[call.Name()](ctx, call.Args, q)
}

// owns reports whether call was bound against this view's registry. A
// same-named operation from another registry may declare other parameter
// types, so it is not dispatched.
func (d *Definition[F, Q]) owns(kind registry.Kind, call query.BoundCall) error {
	if call.Op == nil {
		return fmt.Errorf("%s call has no bound operation", kind)
	}
	sig, ok := d.registry.Lookup(kind, call.Op.Name)
	if !ok {
		return fmt.Errorf("no handler for %s %q", kind, call.Op.Name)
	}
	if sig != call.Op {
		return fmt.Errorf("%s %q was bound against a different registry", kind, call.Op.Name)
	}
	return nil
}
