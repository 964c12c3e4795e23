package registry

import "github.com/roach88/viewql/internal/iql"

// Coerce matches a literal value against a parameter type.
//
// The table is total and fixed:
//
//	any          accepts every value unchanged, including None
//	str          StringValue
//	int          IntValue
//	float        FloatValue, or IntValue widened to FloatValue
//	bool         BoolValue (integers are not booleans)
//	list         ListValue with any elements
//	list[T]      ListValue whose elements each coerce to T; None elements
//	             are rejected; the empty list is accepted
//
// None is accepted for any type when nullable is set. No other conversion
// happens: strings never parse as numbers and floats never truncate.
func Coerce(v iql.Value, t Type, nullable bool) (iql.Value, bool) {
	if v == nil {
		return nil, false
	}
	if t == TypeAny {
		return v, true
	}
	if v.Kind() == iql.KindNull {
		if nullable {
			return v, true
		}
		return nil, false
	}

	switch t {
	case TypeStr:
		if s, ok := v.(iql.StringValue); ok {
			return s, true
		}
	case TypeInt:
		if i, ok := v.(iql.IntValue); ok {
			return i, true
		}
	case TypeFloat:
		switch n := v.(type) {
		case iql.FloatValue:
			return n, true
		case iql.IntValue:
			return iql.FloatValue(float64(n)), true
		}
	case TypeBool:
		if b, ok := v.(iql.BoolValue); ok {
			return b, true
		}
	case TypeList:
		if l, ok := v.(iql.ListValue); ok {
			return l, true
		}
	case TypeListStr, TypeListInt, TypeListFloat, TypeListBool:
		l, ok := v.(iql.ListValue)
		if !ok {
			return nil, false
		}
		elem := t.Elem()
		out := make(iql.ListValue, len(l))
		for i, e := range l {
			c, ok := Coerce(e, elem, false)
			if !ok {
				return nil, false
			}
			out[i] = c
		}
		return out, true
	}
	return nil, false
}

// Describe names the type of a value the way error messages show it, so a
// list of mixed elements reads "list" and a homogeneous one "list[int]".
func Describe(v iql.Value) string {
	l, ok := v.(iql.ListValue)
	if !ok || len(l) == 0 {
		if v == nil {
			return "None"
		}
		return v.Kind().String()
	}
	first := l[0].Kind()
	if first == iql.KindList {
		return "list"
	}
	for _, e := range l[1:] {
		if e.Kind() != first {
			return "list"
		}
	}
	return "list[" + first.String() + "]"
}
