package nlq

import (
	"errors"
	"fmt"

	"github.com/roach88/viewql/internal/eval"
	"github.com/roach88/viewql/internal/iql"
	"github.com/roach88/viewql/internal/query"
)

// RetriesExhaustedError reports a stage whose every attempt was rejected.
// Err is the rejection of the last attempt.
type RetriesExhaustedError struct {
	AskID    string
	Mode     iql.Mode
	Attempts []Attempt
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("ask %s: %s rejected after %d attempts: %v", e.AskID, e.Mode, len(e.Attempts), e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// IsRetriesExhausted checks if err is a RetriesExhaustedError.
func IsRetriesExhausted(err error) bool {
	var re *RetriesExhaustedError
	return errors.As(err, &re)
}

// retryable reports whether the generator can fix err by writing
// different IQL.
func retryable(err error) bool {
	var pe *iql.Error
	var be *query.BindError
	return errors.As(err, &pe) || errors.As(err, &be)
}

// ErrorCode classifies an ask failure: the IQL or bind error code,
// HOST_INVOCATION, or ERROR for anything else.
func ErrorCode(err error) string {
	var pe *iql.Error
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	var be *query.BindError
	if errors.As(err, &be) {
		return string(be.Code)
	}
	if eval.IsHostInvocation(err) {
		return "HOST_INVOCATION"
	}
	return "ERROR"
}
