package iql

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the primitive type of a literal value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
)

var valueKindNames = [...]string{
	KindNull:   "None",
	KindString: "str",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindList:   "list",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "unknown"
}

// Value is a sealed interface over the literal forms IQL accepts.
// Only NullValue, StringValue, IntValue, FloatValue, BoolValue and ListValue
// implement it.
type Value interface {
	Kind() ValueKind

	// IQL renders the value as IQL source text that decodes back to an
	// equal value.
	IQL() string

	// Native returns the plain Go representation (nil, string, int64,
	// float64, bool or []any).
	Native() any

	value() // Sealed
}

// NullValue is the None literal.
type NullValue struct{}

func (NullValue) Kind() ValueKind { return KindNull }
func (NullValue) IQL() string     { return "None" }
func (NullValue) Native() any     { return nil }
func (NullValue) value()          {}

// StringValue is a decoded string literal.
type StringValue string

func (StringValue) Kind() ValueKind { return KindString }
func (s StringValue) IQL() string   { return strconv.Quote(string(s)) }
func (s StringValue) Native() any   { return string(s) }
func (StringValue) value()          {}

// IntValue is an integer literal. Always int64.
type IntValue int64

func (IntValue) Kind() ValueKind { return KindInt }
func (i IntValue) IQL() string   { return strconv.FormatInt(int64(i), 10) }
func (i IntValue) Native() any   { return int64(i) }
func (IntValue) value()          {}

// FloatValue is a floating point literal. The decoder never produces
// infinities or NaN.
type FloatValue float64

func (FloatValue) Kind() ValueKind { return KindFloat }

// IQL renders the shortest representation that still lexes as a float, so
// 2.0 renders as "2.0" rather than "2".
func (f FloatValue) IQL() string {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "None"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

func (f FloatValue) Native() any { return float64(f) }
func (FloatValue) value()        {}

// BoolValue is True or False.
type BoolValue bool

func (BoolValue) Kind() ValueKind { return KindBool }

func (b BoolValue) IQL() string {
	if b {
		return "True"
	}
	return "False"
}

func (b BoolValue) Native() any { return bool(b) }
func (BoolValue) value()        {}

// ListValue is an ordered list of literals. Lists may nest but never
// contain calls.
type ListValue []Value

func (ListValue) Kind() ValueKind { return KindList }

func (l ListValue) IQL() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.IQL()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l ListValue) Native() any {
	out := make([]any, len(l))
	for i, v := range l {
		out[i] = v.Native()
	}
	return out
}

func (ListValue) value() {}

// EqualValues reports whether two literal values are structurally equal.
// IntValue(1) and FloatValue(1) are not equal.
func EqualValues(a, b Value) bool {
	switch av := a.(type) {
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av == bv
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av == bv
	case FloatValue:
		bv, ok := b.(FloatValue)
		return ok && av == bv
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case ListValue:
		bv, ok := b.(ListValue)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !EqualValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
