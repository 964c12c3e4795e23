package viewspec

import (
	"context"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/query"
	"github.com/roach88/viewql/internal/queryir"
	"github.com/roach88/viewql/internal/registry"
	"github.com/roach88/viewql/internal/view"
)

// actionSpec is a compiled action: any combination of ordering and
// paging clauses, applied in that order.
type actionSpec struct {
	orderBy *operand
	desc    *operand
	limit   *operand
	offset  *operand

	// columns restricts parameterised order_by values. Empty means any
	// valid identifier.
	columns map[string]bool
}

func compileAction(op cue.Value, scope paramScope, columns []string) (*actionSpec, error) {
	spec := &actionSpec{columns: make(map[string]bool, len(columns))}
	for _, c := range columns {
		spec.columns[c] = true
	}

	clause := func(field string, want registry.Type) (*operand, error) {
		v := op.LookupPath(cue.ParsePath(field))
		if !v.Exists() {
			return nil, nil
		}
		o, err := scope.ref(v, field)
		if err != nil {
			return nil, err
		}
		if o.typ != want && o.typ != registry.TypeAny {
			return nil, &CompileError{Field: field, Message: fmt.Sprintf("must be %s, got %s", want, o.typ), Pos: v.Pos()}
		}
		return o, nil
	}

	var err error
	if spec.orderBy, err = clause("order_by", registry.TypeStr); err != nil {
		return nil, err
	}
	if spec.desc, err = clause("desc", registry.TypeBool); err != nil {
		return nil, err
	}
	if spec.limit, err = clause("limit", registry.TypeInt); err != nil {
		return nil, err
	}
	if spec.offset, err = clause("offset", registry.TypeInt); err != nil {
		return nil, err
	}

	if spec.orderBy == nil && spec.limit == nil && spec.offset == nil {
		return nil, &CompileError{Field: "action", Message: "action needs order_by, limit or offset", Pos: op.Pos()}
	}
	if spec.desc != nil && spec.orderBy == nil {
		return nil, &CompileError{Field: "order_by", Message: "desc without order_by", Pos: op.Pos()}
	}
	if spec.orderBy != nil && spec.orderBy.param == "" {
		col, _ := spec.orderBy.value.(iql.StringValue)
		if !queryir.ValidIdentifier(string(col)) {
			return nil, &CompileError{Field: "order_by", Message: fmt.Sprintf("invalid column %q", col), Pos: op.Pos()}
		}
	}
	return spec, nil
}

func (a *actionSpec) apply(args query.Args, sel *queryir.Select) (*queryir.Select, error) {
	if a.orderBy != nil {
		col, _ := a.orderBy.resolve(args).(iql.StringValue)
		if err := a.checkColumn(string(col)); err != nil {
			return nil, err
		}
		desc := false
		if a.desc != nil {
			b, _ := a.desc.resolve(args).(iql.BoolValue)
			desc = bool(b)
		}
		sel = sel.Order(string(col), desc)
	}

	if a.limit != nil {
		n, err := nonNegative("limit", a.limit.resolve(args))
		if err != nil {
			return nil, err
		}
		sel = sel.WithLimit(n)
	}

	if a.offset != nil {
		n, err := nonNegative("offset", a.offset.resolve(args))
		if err != nil {
			return nil, err
		}
		sel = sel.WithOffset(n)
	}
	return sel, nil
}

func (a *actionSpec) checkColumn(col string) error {
	if a.orderBy.param == "" {
		return nil
	}
	if !queryir.ValidIdentifier(col) {
		return fmt.Errorf("cannot order by %q: not a column name", col)
	}
	if len(a.columns) > 0 && !a.columns[col] {
		return fmt.Errorf("cannot order by %q: not a column of this view", col)
	}
	return nil
}

func nonNegative(clause string, v iql.Value) (int64, error) {
	n, ok := v.(iql.IntValue)
	if !ok {
		return 0, fmt.Errorf("%s must be an integer", clause)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", clause, n)
	}
	return int64(n), nil
}

func actionFunc(spec *actionSpec) view.ActionFunc[*queryir.Select] {
	return func(_ context.Context, args query.Args, sel *queryir.Select) (*queryir.Select, error) {
		return spec.apply(args, sel)
	}
}
