// Package sqlview is the SQL host: views whose filters produce Query IR
// predicates and whose actions reshape a Query IR select.
//
// A View is declared once and is immutable. Each request starts a fresh
// Query from the view's base select, applies bound filters and actions,
// and compiles the result to SQL:
//
//	q := v.NewQuery()
//	if err := q.ApplyFilters(ctx, filters); err != nil { ... }
//	if err := q.ApplyActions(ctx, actions); err != nil { ... }
//	rows, err := q.Execute(ctx, db)
package sqlview

import (
	"context"
	"fmt"

	"github.com/roach88/viewql/internal/eval"
	"github.com/roach88/viewql/internal/query"
	"github.com/roach88/viewql/internal/queryir"
	"github.com/roach88/viewql/internal/querysql"
	"github.com/roach88/viewql/internal/registry"
	"github.com/roach88/viewql/internal/store"
	"github.com/roach88/viewql/internal/view"
)

// Definition is a view definition over Query IR.
type Definition = view.Definition[queryir.Predicate, *queryir.Select]

// Builder declares the operations of an SQL view.
type Builder = view.Builder[queryir.Predicate, *queryir.Select]

// Combinators composes predicates into n-ary Query IR connectives. Nested
// conjunctions are left nested; the SQL compiler prints them flat.
func Combinators() view.Combinators[queryir.Predicate] {
	return view.Combinators[queryir.Predicate]{
		And: func(l, r queryir.Predicate) queryir.Predicate {
			return &queryir.And{Predicates: []queryir.Predicate{l, r}}
		},
		Or: func(l, r queryir.Predicate) queryir.Predicate {
			return &queryir.Or{Predicates: []queryir.Predicate{l, r}}
		},
		Not: func(p queryir.Predicate) queryir.Predicate {
			return &queryir.Not{Predicate: p}
		},
	}
}

// NewBuilder starts an SQL view declaration with the Query IR combinators.
func NewBuilder() *Builder {
	return view.NewBuilder[queryir.Predicate, *queryir.Select](Combinators())
}

// Querier executes compiled SQL. *store.Store implements it.
type Querier interface {
	QueryRows(ctx context.Context, query string, args ...any) (*store.Rows, error)
}

// View is a named, immutable SQL view.
type View struct {
	name        string
	description string
	base        *queryir.Select
	def         *Definition
	compiler    *querysql.SQLCompiler
}

// New creates a view. The base select is copied.
func New(name, description string, base *queryir.Select, def *Definition) (*View, error) {
	if base == nil {
		return nil, fmt.Errorf("view %q: nil base select", name)
	}
	if def == nil {
		return nil, fmt.Errorf("view %q: nil definition", name)
	}
	if err := queryir.Validate(base).Err(); err != nil {
		return nil, fmt.Errorf("view %q: %w", name, err)
	}
	return &View{
		name:        name,
		description: description,
		base:        base.Clone(),
		def:         def,
		compiler:    querysql.NewSQLCompiler(),
	}, nil
}

func (v *View) Name() string        { return v.name }
func (v *View) Description() string { return v.description }

// Registry returns the signatures IQL is bound against.
func (v *View) Registry() *registry.Registry {
	return v.def.Registry()
}

// Definition returns the host used for evaluation.
func (v *View) Definition() *Definition {
	return v.def
}

// NewQuery starts a query from the base select.
func (v *View) NewQuery() *Query {
	return &Query{view: v, sel: v.base.Clone()}
}

// Query is one request against a view. Not safe for concurrent use.
type Query struct {
	view *View
	sel  *queryir.Select
}

// ApplyFilters evaluates a bound filter tree and adds the resulting
// predicate to the WHERE clause.
func (q *Query) ApplyFilters(ctx context.Context, f query.Filter) error {
	if f == nil {
		return nil
	}
	pred, err := eval.Filters[queryir.Predicate](ctx, f, q.view.def)
	if err != nil {
		return err
	}
	q.sel = q.sel.Where(pred)
	return nil
}

// ApplyActions applies bound actions in order. On failure the query is
// left as it was before the call.
func (q *Query) ApplyActions(ctx context.Context, actions query.Actions) error {
	sel, err := eval.Actions[*queryir.Select](ctx, actions, q.view.def, q.sel)
	if err != nil {
		return err
	}
	if sel == nil {
		return fmt.Errorf("view %q: action returned a nil select", q.view.name)
	}
	q.sel = sel
	return nil
}

// Select returns a copy of the current query state.
func (q *Query) Select() *queryir.Select {
	return q.sel.Clone()
}

// SQL compiles the current state to parameterized SQL.
func (q *Query) SQL() (string, []any, error) {
	return q.view.compiler.Compile(q.sel)
}

// Display compiles the current state and interpolates the parameters,
// for logs and printing only.
func (q *Query) Display() (string, error) {
	sql, params, err := q.SQL()
	if err != nil {
		return "", err
	}
	return querysql.Interpolate(sql, params)
}

// Execute compiles and runs the query.
func (q *Query) Execute(ctx context.Context, db Querier) (*store.Rows, error) {
	sql, params, err := q.SQL()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryRows(ctx, sql, params...)
	if err != nil {
		return nil, fmt.Errorf("execute view %q: %w", q.view.name, err)
	}
	return rows, nil
}
