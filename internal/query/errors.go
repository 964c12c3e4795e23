package query

import (
	"errors"
	"fmt"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/registry"
)

// BindErrorCode categorizes binding failures.
type BindErrorCode string

const (
	// ErrCodeOperationNotFound indicates a call to an unregistered name.
	ErrCodeOperationNotFound BindErrorCode = "OPERATION_NOT_FOUND"

	// ErrCodeArityMismatch indicates a wrong number of arguments.
	ErrCodeArityMismatch BindErrorCode = "ARITY_MISMATCH"

	// ErrCodeTypeMismatch indicates an argument of the wrong type.
	ErrCodeTypeMismatch BindErrorCode = "TYPE_MISMATCH"

	// ErrCodeUnsupportedSyntax indicates a tree shape the target mode does
	// not allow, such as a combinator handed to the actions binder.
	ErrCodeUnsupportedSyntax BindErrorCode = "UNSUPPORTED_SYNTAX"
)

// BindError reports why a call could not be bound.
//
// Fields beyond Code, Message, Kind, Name and Span are set only for the
// codes they describe.
type BindError struct {
	Code    BindErrorCode
	Message string

	Kind registry.Kind
	Name string

	// Expr is the canonical IQL text of the offending call or node.
	Expr string
	Span iql.Span

	// OPERATION_NOT_FOUND
	Suggestions []string
	OtherKind   bool // name exists in the other registry

	// ARITY_MISMATCH
	Min, Max, Got int

	// TYPE_MISMATCH
	Param    string
	Index    int
	Expected registry.Type
	Actual   string
}

// Error implements the error interface.
func (e *BindError) Error() string {
	if e.Expr == "" {
		return e.Message
	}
	return e.Message + ": " + e.Expr
}

func newNotFound(kind registry.Kind, call *iql.Call, reg *registry.Registry) *BindError {
	e := &BindError{
		Code: ErrCodeOperationNotFound,
		Kind: kind,
		Name: call.Name,
		Expr: iql.Render(call),
		Span: call.Span,
	}
	e.Suggestions = suggest(call.Name, reg.Names(kind))
	_, e.OtherKind = reg.Lookup(kind.Other(), call.Name)

	msg := fmt.Sprintf("%s %q not found", kind, call.Name)
	switch {
	case e.OtherKind:
		msg += fmt.Sprintf(" (%q is %s, not %s)", call.Name, article(kind.Other()), article(kind))
	case len(e.Suggestions) > 0:
		msg += fmt.Sprintf(" (did you mean %s?)", joinNames(e.Suggestions))
	}
	e.Message = msg
	return e
}

func newArity(sig *registry.Signature, call *iql.Call) *BindError {
	min, max := sig.Arity()
	var want string
	switch {
	case max < 0:
		want = fmt.Sprintf("at least %d", min)
	case min == max:
		want = fmt.Sprintf("%d", min)
	default:
		want = fmt.Sprintf("%d to %d", min, max)
	}
	noun := "arguments"
	if min == 1 && (max == 1 || max < 0) {
		noun = "argument"
	}
	return &BindError{
		Code:    ErrCodeArityMismatch,
		Message: fmt.Sprintf("%s %s expects %s %s, got %d", sig.Kind, sig.Name, want, noun, len(call.Args)),
		Kind:    sig.Kind,
		Name:    sig.Name,
		Expr:    iql.Render(call),
		Span:    call.Span,
		Min:     min,
		Max:     max,
		Got:     len(call.Args),
	}
}

func newTypeMismatch(sig *registry.Signature, call *iql.Call, index int, p registry.Param) *BindError {
	arg := call.Args[index]
	actual := registry.Describe(arg.Value)
	expected := string(p.Type)
	if p.Nullable && p.Type != registry.TypeAny {
		expected += " | None"
	}
	return &BindError{
		Code: ErrCodeTypeMismatch,
		Message: fmt.Sprintf("argument %d (%s) of %s %s must be %s, got %s %s",
			index+1, p.Name, sig.Kind, sig.Name, expected, actual, arg.Value.IQL()),
		Kind:     sig.Kind,
		Name:     sig.Name,
		Expr:     iql.Render(call),
		Span:     arg.Span,
		Param:    p.Name,
		Index:    index,
		Expected: p.Type,
		Actual:   actual,
	}
}

func newUnsupported(kind registry.Kind, construct string, n iql.Node) *BindError {
	return &BindError{
		Code:    ErrCodeUnsupportedSyntax,
		Message: fmt.Sprintf("%s syntax is not supported in IQL %ss", construct, kind),
		Kind:    kind,
		Expr:    iql.Render(n),
		Span:    n.Pos(),
	}
}

// IsOperationNotFound reports whether err is an OPERATION_NOT_FOUND error.
func IsOperationNotFound(err error) bool {
	return hasCode(err, ErrCodeOperationNotFound)
}

// IsArityMismatch reports whether err is an ARITY_MISMATCH error.
func IsArityMismatch(err error) bool {
	return hasCode(err, ErrCodeArityMismatch)
}

// IsTypeMismatch reports whether err is a TYPE_MISMATCH error.
func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

func hasCode(err error, code BindErrorCode) bool {
	var be *BindError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		switch {
		case i == 0:
		case i == len(names)-1:
			out += " or "
		default:
			out += ", "
		}
		out += n
	}
	return out
}

func article(k registry.Kind) string {
	if k == registry.KindAction {
		return "an action"
	}
	return "a filter"
}
