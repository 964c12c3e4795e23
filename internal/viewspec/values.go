package viewspec

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/viewql/internal/iql"
)

// toIQL converts a concrete CUE value to an IQL literal.
func toIQL(v cue.Value) (iql.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return iql.NullValue{}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return iql.StringValue(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return iql.IntValue(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return iql.FloatValue(f), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return iql.BoolValue(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		list := iql.ListValue{}
		for iter.Next() {
			elem, err := toIQL(iter.Value())
			if err != nil {
				return nil, err
			}
			list = append(list, elem)
		}
		return list, nil
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// lookupString returns an optional string field.
func lookupString(v cue.Value, field string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", true, &CompileError{Field: field, Message: "must be a string", Pos: f.Pos()}
	}
	return s, true, nil
}

// lookupBool returns an optional bool field, false when absent.
func lookupBool(v cue.Value, field string) (bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, &CompileError{Field: field, Message: "must be a bool", Pos: f.Pos()}
	}
	return b, nil
}
