package registry

import (
	"fmt"
	"strings"
)

// Type is a parameter type. The set is closed; use ParseType to obtain one
// from text.
type Type string

const (
	TypeStr   Type = "str"
	TypeInt   Type = "int"
	TypeFloat Type = "float"
	TypeBool  Type = "bool"
	TypeAny   Type = "any"
	TypeList  Type = "list"

	TypeListStr   Type = "list[str]"
	TypeListInt   Type = "list[int]"
	TypeListFloat Type = "list[float]"
	TypeListBool  Type = "list[bool]"
)

var validTypes = map[Type]bool{
	TypeStr:       true,
	TypeInt:       true,
	TypeFloat:     true,
	TypeBool:      true,
	TypeAny:       true,
	TypeList:      true,
	TypeListStr:   true,
	TypeListInt:   true,
	TypeListFloat: true,
	TypeListBool:  true,
}

// typeAliases maps accepted spellings onto canonical types.
var typeAliases = map[string]Type{
	"string":  TypeStr,
	"integer": TypeInt,
	"number":  TypeFloat,
	"boolean": TypeBool,
}

// ParseType converts a type name into a Type. Whitespace inside brackets
// is ignored, so "list[ int ]" parses as TypeListInt.
func ParseType(s string) (Type, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if alias, ok := typeAliases[norm]; ok {
		return alias, nil
	}
	if open := strings.IndexByte(norm, '['); open > 0 && strings.HasSuffix(norm, "]") {
		elem, err := ParseType(norm[open+1 : len(norm)-1])
		if err != nil {
			return "", fmt.Errorf("invalid type %q: %w", s, err)
		}
		norm = norm[:open] + "[" + string(elem) + "]"
	}
	t := Type(norm)
	if !validTypes[t] {
		return "", fmt.Errorf("invalid type %q: must be one of str, int, float, bool, any, list, list[str|int|float|bool]", s)
	}
	return t, nil
}

// Valid reports whether t belongs to the closed type set.
func (t Type) Valid() bool {
	return validTypes[t]
}

// IsList reports whether t is a list type, typed or untyped.
func (t Type) IsList() bool {
	return t == TypeList || strings.HasPrefix(string(t), "list[")
}

// Elem returns the element type of a typed list. Untyped lists and
// non-list types report TypeAny.
func (t Type) Elem() Type {
	if strings.HasPrefix(string(t), "list[") {
		return Type(strings.TrimSuffix(strings.TrimPrefix(string(t), "list["), "]"))
	}
	return TypeAny
}

func (t Type) String() string {
	return string(t)
}
