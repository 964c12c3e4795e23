package viewspec

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/query"
	"github.com/roach88/viewql/internal/registry"
)

// parseParams reads the ordered parameter list of an operation.
//
//	params: [{name: "country", type: "str", nullable: true, default: null}]
func parseParams(op cue.Value) ([]registry.Param, error) {
	paramsVal := op.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, nil
	}

	iter, err := paramsVal.List()
	if err != nil {
		return nil, &CompileError{Field: "params", Message: "must be a list", Pos: paramsVal.Pos()}
	}

	var params []registry.Param
	for iter.Next() {
		pv := iter.Value()

		name, ok, err := lookupString(pv, "name")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &CompileError{Field: "params", Message: "parameter name is required", Pos: pv.Pos()}
		}

		typeName, ok, err := lookupString(pv, "type")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &CompileError{Field: "type", Message: fmt.Sprintf("parameter %q: type is required", name), Pos: pv.Pos()}
		}
		typ, err := registry.ParseType(typeName)
		if err != nil {
			return nil, &CompileError{Field: "type", Message: err.Error(), Pos: pv.LookupPath(cue.ParsePath("type")).Pos()}
		}

		nullable, err := lookupBool(pv, "nullable")
		if err != nil {
			return nil, err
		}

		p := registry.Param{Name: name, Type: typ, Nullable: nullable}
		if dv := pv.LookupPath(cue.ParsePath("default")); dv.Exists() {
			p.Default, err = toIQL(dv)
			if err != nil {
				return nil, err
			}
		}
		params = append(params, p)
	}
	return params, nil
}

// operand is where a clause takes its value from: a parameter or a
// constant.
type operand struct {
	param string
	index int
	rest  bool // the variadic parameter; resolves to all trailing args
	typ   registry.Type
	value iql.Value
}

func (o *operand) resolve(args query.Args) iql.Value {
	switch {
	case o.param == "":
		return o.value
	case o.rest:
		return iql.ListValue(args.Variadic(o.index))
	default:
		return args.Value(o.index)
	}
}

// paramScope resolves parameter references within one operation.
type paramScope struct {
	params   []registry.Param
	variadic bool
}

// ref resolves {param: "name"} or a constant into an operand. field names
// the clause for error messages.
func (s paramScope) ref(v cue.Value, field string) (*operand, error) {
	if v.Kind() == cue.StructKind {
		name, ok, err := lookupString(v, "param")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &CompileError{Field: field, Message: "expected a constant or {param: name}", Pos: v.Pos()}
		}
		return s.lookup(name, field, v.Pos())
	}

	val, err := toIQL(v)
	if err != nil {
		return nil, err
	}
	return &operand{value: val, typ: constantType(val)}, nil
}

func (s paramScope) lookup(name, field string, pos token.Pos) (*operand, error) {
	for i, p := range s.params {
		if p.Name != name {
			continue
		}
		rest := s.variadic && i == len(s.params)-1
		typ := p.Type
		if rest {
			typ = restListType(p.Type)
		}
		return &operand{param: name, index: i, rest: rest, typ: typ}, nil
	}
	return nil, &CompileError{Field: field, Message: fmt.Sprintf("unknown parameter %q", name), Pos: pos}
}

// restListType is the list type a variadic parameter collects into.
func restListType(elem registry.Type) registry.Type {
	if t, err := registry.ParseType("list[" + string(elem) + "]"); err == nil {
		return t
	}
	return registry.TypeList
}

func constantType(v iql.Value) registry.Type {
	switch v.Kind() {
	case iql.KindString:
		return registry.TypeStr
	case iql.KindInt:
		return registry.TypeInt
	case iql.KindFloat:
		return registry.TypeFloat
	case iql.KindBool:
		return registry.TypeBool
	case iql.KindList:
		return registry.TypeList
	default:
		return registry.TypeAny
	}
}
