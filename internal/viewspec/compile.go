package viewspec

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/viewql/internal/queryir"
	"github.com/roach88/viewql/internal/registry"
	"github.com/roach88/viewql/internal/sqlview"
)

// CompileView parses a CUE value into an SQL view.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the view struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`view: candidates: { ... }`)
//	sv, err := CompileView(v.LookupPath(cue.ParsePath("view.candidates")))
func CompileView(v cue.Value) (*sqlview.View, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	name, err := operationName(v)
	if err != nil {
		return nil, err
	}
	if !queryir.ValidIdentifier(name) {
		return nil, &CompileError{Field: "name", Message: fmt.Sprintf("invalid view name %q", name), Pos: v.Pos()}
	}

	description, _, err := lookupString(v, "description")
	if err != nil {
		return nil, err
	}

	table, ok, err := lookupString(v, "table")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CompileError{Field: "table", Message: "table is required", Pos: v.Pos()}
	}
	if !queryir.ValidIdentifier(table) {
		return nil, &CompileError{Field: "table", Message: fmt.Sprintf("invalid table %q", table), Pos: v.Pos()}
	}

	columns, err := parseColumns(v)
	if err != nil {
		return nil, err
	}

	b := sqlview.NewBuilder()
	positions := make(map[string]token.Pos)

	if err := eachOperation(v, "filter", func(opName string, op cue.Value) error {
		sig, scope, err := parseSignature(opName, op)
		if err != nil {
			return err
		}
		conds, err := compileWhere(op, scope)
		if err != nil {
			return err
		}
		positions["filter "+sig.Name] = op.Pos()
		b.Filter(sig, filterFunc(conds))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachOperation(v, "action", func(opName string, op cue.Value) error {
		sig, scope, err := parseSignature(opName, op)
		if err != nil {
			return err
		}
		spec, err := compileAction(op, scope, columns)
		if err != nil {
			return err
		}
		positions["action "+sig.Name] = op.Pos()
		b.Action(sig, actionFunc(spec))
		return nil
	}); err != nil {
		return nil, err
	}

	def, err := b.Build()
	if err != nil {
		var ce *registry.ConfigError
		if errors.As(err, &ce) {
			return nil, &CompileError{
				Field:   "operation",
				Message: ce.Error(),
				Pos:     positions[ce.Kind.String()+" "+ce.Name],
			}
		}
		return nil, err
	}

	base := &queryir.Select{From: table}
	for _, c := range columns {
		base.Columns = append(base.Columns, queryir.Col(c))
	}
	return sqlview.New(name, description, base, def)
}

// operationName is the explicit name field, or the struct label.
func operationName(v cue.Value) (string, error) {
	name, ok, err := lookupString(v, "name")
	if err != nil || ok {
		return name, err
	}
	labels := v.Path().Selectors()
	if len(labels) == 0 {
		return "", &CompileError{Field: "name", Message: "name is required", Pos: v.Pos()}
	}
	return labels[len(labels)-1].String(), nil
}

func parseColumns(v cue.Value) ([]string, error) {
	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, nil
	}
	iter, err := colsVal.List()
	if err != nil {
		return nil, &CompileError{Field: "columns", Message: "must be a list of column names", Pos: colsVal.Pos()}
	}
	var cols []string
	for iter.Next() {
		c, err := iter.Value().String()
		if err != nil || !queryir.ValidIdentifier(c) {
			return nil, &CompileError{Field: "columns", Message: fmt.Sprintf("invalid column %q", c), Pos: iter.Value().Pos()}
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// eachOperation iterates the filter or action struct in declaration order.
func eachOperation(v cue.Value, field string, fn func(name string, op cue.Value) error) error {
	opsVal := v.LookupPath(cue.ParsePath(field))
	if !opsVal.Exists() {
		return nil
	}
	iter, err := opsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// parseSignature reads name, description, params and variadic.
func parseSignature(label string, op cue.Value) (registry.Signature, paramScope, error) {
	var sig registry.Signature

	name, ok, err := lookupString(op, "name")
	if err != nil {
		return sig, paramScope{}, err
	}
	if !ok {
		name = label
	}

	description, _, err := lookupString(op, "description")
	if err != nil {
		return sig, paramScope{}, err
	}

	params, err := parseParams(op)
	if err != nil {
		return sig, paramScope{}, err
	}

	variadic, err := lookupBool(op, "variadic")
	if err != nil {
		return sig, paramScope{}, err
	}

	sig = registry.Signature{Name: name, Params: params, Variadic: variadic, Description: description}
	return sig, paramScope{params: params, variadic: variadic}, nil
}
