package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/viewql/internal/query"
)

// ErrHostFailure is returned by RecordingHost for operations listed in
// FailOn.
var ErrHostFailure = errors.New("host failure")

// RecordingHost is a filter and action host over strings. Predicates render
// as text so tests can compare the composed result directly:
//
//	method_foo(1) and not method_bar("a", 2)  =>  (method_foo(1) AND NOT method_bar("a", 2))
//
// Every host call is appended to Events in invocation order.
//
// Thread-safety: all methods are safe for concurrent use.
type RecordingHost struct {
	// FailOn names operations that fail with ErrHostFailure.
	FailOn map[string]bool

	mu     sync.Mutex
	events []string
}

// NewRecordingHost creates a host that fails on the given operation names.
func NewRecordingHost(failOn ...string) *RecordingHost {
	h := &RecordingHost{FailOn: make(map[string]bool)}
	for _, name := range failOn {
		h.FailOn[name] = true
	}
	return h
}

// Events returns a copy of the recorded host calls.
func (h *RecordingHost) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func (h *RecordingHost) record(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

// Filter renders the call.
func (h *RecordingHost) Filter(_ context.Context, call query.BoundCall) (string, error) {
	text := callText(call)
	h.record("filter " + text)
	if h.FailOn[call.Name()] {
		return "", fmt.Errorf("%s: %w", call.Name(), ErrHostFailure)
	}
	return text, nil
}

func (h *RecordingHost) And(left, right string) string {
	h.record("and")
	return "(" + left + " AND " + right + ")"
}

func (h *RecordingHost) Or(left, right string) string {
	h.record("or")
	return "(" + left + " OR " + right + ")"
}

func (h *RecordingHost) Not(operand string) string {
	h.record("not")
	return "NOT " + operand
}

// Action appends the call to the pipeline state q.
func (h *RecordingHost) Action(_ context.Context, call query.BoundCall, q []string) ([]string, error) {
	text := callText(call)
	h.record("action " + text)
	if h.FailOn[call.Name()] {
		return nil, fmt.Errorf("%s: %w", call.Name(), ErrHostFailure)
	}
	out := make([]string, len(q), len(q)+1)
	copy(out, q)
	return append(out, text), nil
}

func callText(call query.BoundCall) string {
	parts := make([]string, len(call.Args))
	for i, v := range call.Args {
		parts[i] = v.IQL()
	}
	return call.Name() + "(" + strings.Join(parts, ", ") + ")"
}
