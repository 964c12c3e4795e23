package eval

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/query"
)

// HostInvocationError wraps a failure raised by a host while realising a
// bound call.
type HostInvocationError struct {
	// Op is the operation name.
	Op string

	// Index is the position of the call among the evaluated calls: the
	// leaf number for filters, the sequence position for actions.
	Index int

	Span iql.Span
	Err  error
}

// Error implements the error interface.
func (e *HostInvocationError) Error() string {
	return fmt.Sprintf("HOST_INVOCATION: %s (call %d): %v", e.Op, e.Index, e.Err)
}

// Unwrap returns the host's error.
func (e *HostInvocationError) Unwrap() error {
	return e.Err
}

// IsHostInvocation reports whether err is or wraps a *HostInvocationError.
func IsHostInvocation(err error) bool {
	var he *HostInvocationError
	return errors.As(err, &he)
}

// wrapHostError wraps err unless it is a context error, which callers
// compare against directly.
func wrapHostError(call query.BoundCall, index int, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &HostInvocationError{Op: call.Name(), Index: index, Span: call.Span, Err: err}
}
