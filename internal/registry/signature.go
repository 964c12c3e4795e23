package registry

import (
	"strings"

	"github.com/roach88/viewql/internal/iql"
)

// Kind separates the filter and action name spaces.
type Kind int

const (
	KindFilter Kind = iota
	KindAction
)

func (k Kind) String() string {
	if k == KindAction {
		return "action"
	}
	return "filter"
}

// Other returns the opposite kind.
func (k Kind) Other() Kind {
	if k == KindAction {
		return KindFilter
	}
	return KindAction
}

// Param is one positional parameter of an operation.
type Param struct {
	Name string
	Type Type

	// Default is used when the argument is omitted. Nil marks the
	// parameter as required.
	Default iql.Value

	// Nullable admits None for this parameter.
	Nullable bool
}

// Required reports whether the parameter has no default.
func (p Param) Required() bool {
	return p.Default == nil
}

// Signature describes an operation exposed to IQL.
type Signature struct {
	Name   string
	Kind   Kind
	Params []Param

	// Variadic makes the last parameter repeatable: it accepts zero or more
	// trailing arguments of its type.
	Variadic bool

	// Description is shown in the catalogue handed to the text generator.
	Description string
}

// Arity returns the accepted argument counts. max is -1 when unbounded.
func (s *Signature) Arity() (min, max int) {
	fixed := s.Params
	if s.Variadic && len(fixed) > 0 {
		fixed = fixed[:len(fixed)-1]
	}
	for _, p := range fixed {
		if p.Required() {
			min++
		}
	}
	if s.Variadic {
		return min, -1
	}
	return min, len(fixed)
}

// Fixed returns the parameters that take exactly one argument each.
func (s *Signature) Fixed() []Param {
	if s.Variadic && len(s.Params) > 0 {
		return s.Params[:len(s.Params)-1]
	}
	return s.Params
}

// Rest returns the repeatable parameter of a variadic signature.
func (s *Signature) Rest() (Param, bool) {
	if !s.Variadic || len(s.Params) == 0 {
		return Param{}, false
	}
	return s.Params[len(s.Params)-1], true
}

// String renders the signature as "name(p: type, q: type = default)".
func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if s.Variadic && i == len(s.Params)-1 {
			b.WriteByte('*')
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(string(p.Type))
		if p.Nullable && p.Type != TypeAny {
			b.WriteString(" | None")
		}
		if p.Default != nil {
			b.WriteString(" = ")
			b.WriteString(p.Default.IQL())
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (s *Signature) clone() *Signature {
	c := *s
	c.Params = append([]Param(nil), s.Params...)
	return &c
}
