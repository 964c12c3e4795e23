package registry

import (
	"fmt"
	"regexp"
)

// identifierPattern matches names that lex as a single IQL identifier.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedNames cannot be operation names because the parser treats them as
// keywords or literals.
var reservedNames = map[string]bool{
	"and": true, "or": true, "not": true,
	"True": true, "False": true, "None": true,
}

// Builder collects operation declarations. It is not safe for concurrent
// use; the Registry it builds is.
type Builder struct {
	decls []*Signature
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Filter declares a filter operation. The signature's Kind is overwritten.
func (b *Builder) Filter(sig Signature) *Builder {
	sig.Kind = KindFilter
	b.decls = append(b.decls, sig.clone())
	return b
}

// Action declares an action operation. The signature's Kind is overwritten.
func (b *Builder) Action(sig Signature) *Builder {
	sig.Kind = KindAction
	b.decls = append(b.decls, sig.clone())
	return b
}

// Build validates the declarations and returns an immutable registry.
// The first invalid declaration, in declaration order, is reported as a
// *ConfigError.
func (b *Builder) Build() (*Registry, error) {
	reg := &Registry{
		index: [2]map[string]*Signature{{}, {}},
	}

	for _, sig := range b.decls {
		if err := validateSignature(sig); err != nil {
			return nil, err
		}
		idx := reg.index[sig.Kind]
		if _, dup := idx[sig.Name]; dup {
			return nil, &ConfigError{
				Code:    ErrCodeDuplicateOperation,
				Kind:    sig.Kind,
				Name:    sig.Name,
				Message: fmt.Sprintf("%s %q is already declared", sig.Kind, sig.Name),
			}
		}
		stored := sig.clone()
		idx[sig.Name] = stored
		reg.order[sig.Kind] = append(reg.order[sig.Kind], stored)
	}
	return reg, nil
}

func validateSignature(sig *Signature) error {
	fail := func(param, format string, args ...any) error {
		return &ConfigError{
			Code:    ErrCodeInvalidSignature,
			Kind:    sig.Kind,
			Name:    sig.Name,
			Param:   param,
			Message: fmt.Sprintf(format, args...),
		}
	}

	if !identifierPattern.MatchString(sig.Name) {
		return fail("", "name must be an identifier")
	}
	if reservedNames[sig.Name] {
		return fail("", "name is a reserved word")
	}
	if sig.Variadic && len(sig.Params) == 0 {
		return fail("", "variadic operation needs at least one parameter")
	}

	seen := make(map[string]bool, len(sig.Params))
	defaulted := false
	for i, p := range sig.Params {
		if !identifierPattern.MatchString(p.Name) {
			return fail(p.Name, "name must be an identifier")
		}
		if seen[p.Name] {
			return fail(p.Name, "duplicate parameter name")
		}
		seen[p.Name] = true

		if !p.Type.Valid() {
			return fail(p.Name, "invalid type %q", p.Type)
		}

		rest := sig.Variadic && i == len(sig.Params)-1
		if rest {
			if p.Default != nil {
				return fail(p.Name, "variadic parameter cannot have a default")
			}
			continue
		}

		if p.Default == nil {
			if defaulted {
				return fail(p.Name, "required parameter follows a parameter with a default")
			}
			continue
		}
		defaulted = true
		coerced, ok := Coerce(p.Default, p.Type, p.Nullable)
		if !ok {
			return fail(p.Name, "default %s is not a valid %s", p.Default.IQL(), p.Type)
		}
		// Stored coerced so an omitted argument binds like an explicit one.
		sig.Params[i].Default = coerced
	}
	return nil
}

// Registry is an immutable set of filter and action signatures.
type Registry struct {
	index [2]map[string]*Signature
	order [2][]*Signature
}

// Lookup finds an operation by exact name within one kind.
func (r *Registry) Lookup(kind Kind, name string) (*Signature, bool) {
	if kind != KindFilter && kind != KindAction {
		return nil, false
	}
	sig, ok := r.index[kind][name]
	return sig, ok
}

// Filters returns the filter signatures in declaration order.
func (r *Registry) Filters() []*Signature {
	return append([]*Signature(nil), r.order[KindFilter]...)
}

// Actions returns the action signatures in declaration order.
func (r *Registry) Actions() []*Signature {
	return append([]*Signature(nil), r.order[KindAction]...)
}

// Names returns the operation names of one kind in declaration order.
func (r *Registry) Names(kind Kind) []string {
	names := make([]string, len(r.order[kind]))
	for i, sig := range r.order[kind] {
		names[i] = sig.Name
	}
	return names
}

// Len returns the number of operations of one kind.
func (r *Registry) Len(kind Kind) int {
	return len(r.order[kind])
}
