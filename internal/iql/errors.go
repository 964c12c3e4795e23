package iql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes parse failures.
type ErrorCode string

const (
	// ErrCodeUnsupportedSyntax indicates a syntax form outside the IQL grammar.
	ErrCodeUnsupportedSyntax ErrorCode = "UNSUPPORTED_SYNTAX"

	// ErrCodeArgumentParsing indicates a call argument that is not a literal.
	ErrCodeArgumentParsing ErrorCode = "ARGUMENT_PARSING"

	// ErrCodeSyntax indicates a malformed token stream (unterminated string,
	// unbalanced parentheses, unexpected end of input).
	ErrCodeSyntax ErrorCode = "SYNTAX_ERROR"
)

// Error is a parse failure attributed to a span of the source.
//
// Error() renders "<message>: <offending text>", which is the form handed
// back to the generating model on retry.
type Error struct {
	Code ErrorCode

	// Message is the human-readable description without the source excerpt.
	Message string

	// Construct labels the rejected syntax form (e.g. "attribute access").
	// Empty for argument and token-level errors.
	Construct string

	Span   Span
	Source string
}

// Error implements the error interface.
func (e *Error) Error() string {
	snippet := e.Snippet()
	if snippet == "" {
		return e.Message
	}
	return e.Message + ": " + snippet
}

// Snippet returns the exact source text covered by the error span.
func (e *Error) Snippet() string {
	return e.Span.Text(e.Source)
}

// Position returns the 1-based line and column of the start of the span.
func (e *Error) Position() (line, col int) {
	return e.Span.Position(e.Source)
}

func newUnsupported(construct, context string, span Span, source string) *Error {
	msg := fmt.Sprintf("%s syntax is not supported in IQL", construct)
	if context != "" {
		msg += " " + context
	}
	return &Error{
		Code:      ErrCodeUnsupportedSyntax,
		Message:   msg,
		Construct: construct,
		Span:      span,
		Source:    source,
	}
}

func newArgumentError(span Span, source string) *Error {
	return &Error{
		Code:    ErrCodeArgumentParsing,
		Message: "Not a valid IQL argument",
		Span:    span,
		Source:  source,
	}
}

func newSyntaxError(msg string, span Span, source string) *Error {
	return &Error{
		Code:    ErrCodeSyntax,
		Message: msg,
		Span:    span,
		Source:  source,
	}
}

// IsUnsupportedSyntax reports whether err is an UNSUPPORTED_SYNTAX parse error.
func IsUnsupportedSyntax(err error) bool {
	return hasCode(err, ErrCodeUnsupportedSyntax)
}

// IsArgumentParsing reports whether err is an ARGUMENT_PARSING parse error.
func IsArgumentParsing(err error) bool {
	return hasCode(err, ErrCodeArgumentParsing)
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Text returns the source substring covered by the span, clamped to the
// source bounds.
func (s Span) Text(source string) string {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(source) {
		end = len(source)
	}
	if start >= end {
		return ""
	}
	return source[start:end]
}

// Position returns the 1-based line and column (in bytes) of Start.
func (s Span) Position(source string) (line, col int) {
	start := s.Start
	if start > len(source) {
		start = len(source)
	}
	if start < 0 {
		start = 0
	}
	prefix := source[:start]
	line = strings.Count(prefix, "\n") + 1
	col = start - strings.LastIndexByte(prefix, '\n')
	return line, col
}

// join returns the smallest span covering both a and b.
func join(a, b Span) Span {
	return Span{Start: min(a.Start, b.Start), End: max(a.End, b.End)}
}
