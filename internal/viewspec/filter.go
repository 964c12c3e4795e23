package viewspec

import (
	"context"
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/query"
	"github.com/roach88/viewql/internal/queryir"
	"github.com/roach88/viewql/internal/registry"
	"github.com/roach88/viewql/internal/view"
)

// Where clause operators beyond the comparisons.
const (
	opLike   = "like"
	opIn     = "in"
	opIsNull = "is_null"
)

// condition is one compiled where clause.
type condition struct {
	column  string
	op      string
	operand *operand // nil for a bare is_null
	pattern string   // like template; "{}" is replaced by the value
}

// compileWhere reads a where clause: one condition or a list of
// conditions that are all required.
func compileWhere(op cue.Value, scope paramScope) ([]condition, error) {
	whereVal := op.LookupPath(cue.ParsePath("where"))
	if !whereVal.Exists() {
		return nil, &CompileError{Field: "where", Message: "filter needs a where clause", Pos: op.Pos()}
	}

	if whereVal.Kind() != cue.ListKind {
		c, err := compileCondition(whereVal, scope)
		if err != nil {
			return nil, err
		}
		return []condition{c}, nil
	}

	iter, err := whereVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var conds []condition
	for iter.Next() {
		c, err := compileCondition(iter.Value(), scope)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 0 {
		return nil, &CompileError{Field: "where", Message: "where list is empty", Pos: whereVal.Pos()}
	}
	return conds, nil
}

func compileCondition(v cue.Value, scope paramScope) (condition, error) {
	var c condition

	column, ok, err := lookupString(v, "column")
	if err != nil {
		return c, err
	}
	if !ok || !queryir.ValidIdentifier(column) {
		return c, &CompileError{Field: "column", Message: fmt.Sprintf("invalid column %q", column), Pos: v.Pos()}
	}
	c.column = column

	op, ok, err := lookupString(v, "op")
	if err != nil {
		return c, err
	}
	if !ok {
		op = "="
	}
	c.op = strings.ToLower(op)

	paramVal := v.LookupPath(cue.ParsePath("param"))
	constVal := v.LookupPath(cue.ParsePath("value"))
	switch {
	case paramVal.Exists() && constVal.Exists():
		return c, &CompileError{Field: "where", Message: "use either param or value, not both", Pos: v.Pos()}
	case paramVal.Exists():
		name, err := paramVal.String()
		if err != nil {
			return c, &CompileError{Field: "param", Message: "must be a parameter name", Pos: paramVal.Pos()}
		}
		c.operand, err = scope.lookup(name, "param", paramVal.Pos())
		if err != nil {
			return c, err
		}
	case constVal.Exists():
		c.operand, err = scope.ref(constVal, "value")
		if err != nil {
			return c, err
		}
	}

	if c.pattern, _, err = lookupString(v, "pattern"); err != nil {
		return c, err
	}

	if err := c.check(v); err != nil {
		return c, err
	}
	return c, nil
}

// check enforces operator and operand compatibility at compile time.
func (c *condition) check(v cue.Value) error {
	fail := func(format string, args ...any) error {
		return &CompileError{Field: "op", Message: fmt.Sprintf(format, args...), Pos: v.Pos()}
	}

	if c.pattern != "" && c.op != opLike {
		return fail("pattern is only valid with op %q", opLike)
	}

	switch c.op {
	case opIsNull:
		if c.operand != nil && c.operand.typ != registry.TypeBool && c.operand.typ != registry.TypeAny {
			return fail("is_null takes a bool operand, got %s", c.operand.typ)
		}
		return nil
	case opIn:
		if c.operand == nil {
			return fail("in needs a param or value")
		}
		if !c.operand.typ.IsList() && c.operand.typ != registry.TypeAny {
			return fail("in needs a list operand, got %s", c.operand.typ)
		}
		return nil
	case opLike:
		if c.operand == nil {
			return fail("like needs a param or value")
		}
		if c.operand.typ != registry.TypeStr && c.operand.typ != registry.TypeAny {
			return fail("like needs a str operand, got %s", c.operand.typ)
		}
		return nil
	}

	if _, err := queryir.ParseCompareOp(c.op); err != nil {
		return fail("unknown op %q: must be one of = != < <= > >= like in is_null", c.op)
	}
	if c.operand == nil {
		return fail("%s needs a param or value", c.op)
	}
	if c.operand.typ.IsList() {
		return fail("%s cannot compare with a list operand", c.op)
	}
	return nil
}

// predicate realises the condition for one call.
func (c *condition) predicate(args query.Args) (queryir.Predicate, error) {
	if c.op == opIsNull {
		if c.operand != nil {
			if b, ok := c.operand.resolve(args).(iql.BoolValue); ok && !bool(b) {
				return &queryir.Not{Predicate: &queryir.IsNull{Column: c.column}}, nil
			}
		}
		return &queryir.IsNull{Column: c.column}, nil
	}

	val := c.operand.resolve(args)
	if val == nil {
		return nil, fmt.Errorf("column %s: missing value", c.column)
	}

	switch c.op {
	case opIn:
		list, ok := val.(iql.ListValue)
		if !ok {
			return nil, fmt.Errorf("column %s: in needs a list, got %s", c.column, val.Kind())
		}
		return &queryir.In{Column: c.column, Values: queryir.Params(list)}, nil

	case opLike:
		s, ok := val.(iql.StringValue)
		if !ok {
			return nil, fmt.Errorf("column %s: like needs a string, got %s", c.column, val.Kind())
		}
		pattern := string(s)
		if c.pattern != "" {
			pattern = strings.ReplaceAll(c.pattern, "{}", pattern)
		}
		return &queryir.Like{Column: c.column, Pattern: pattern}, nil
	}

	op, _ := queryir.ParseCompareOp(c.op)
	if val.Kind() == iql.KindNull {
		switch op {
		case queryir.OpEq:
			return &queryir.IsNull{Column: c.column}, nil
		case queryir.OpNe:
			return &queryir.Not{Predicate: &queryir.IsNull{Column: c.column}}, nil
		default:
			return nil, fmt.Errorf("column %s: cannot order-compare with None", c.column)
		}
	}
	if val.Kind() == iql.KindList {
		return nil, fmt.Errorf("column %s: cannot compare with a list", c.column)
	}
	return &queryir.Compare{Column: c.column, Op: op, Value: queryir.Param(val)}, nil
}

// filterFunc realises all conditions of a filter; several conditions are
// conjoined.
func filterFunc(conds []condition) view.FilterFunc[queryir.Predicate] {
	return func(_ context.Context, args query.Args) (queryir.Predicate, error) {
		preds := make([]queryir.Predicate, 0, len(conds))
		for i := range conds {
			p, err := conds[i].predicate(args)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		if len(preds) == 1 {
			return preds[0], nil
		}
		return &queryir.And{Predicates: preds}, nil
	}
}
