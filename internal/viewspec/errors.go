package viewspec

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a view compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// LoadError represents an error that occurred while loading a views
// directory.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load error codes.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeNoViews       = "E007" // No views declared
	ErrCodeDuplicateView = "E008" // Two views share a name

	ErrCodeInvalidView      = "E101" // table, columns or name
	ErrCodeInvalidParam     = "E102" // parameter declaration
	ErrCodeInvalidFilter    = "E103" // filter where clause
	ErrCodeInvalidAction    = "E104" // action clauses
	ErrCodeInvalidOperation = "E105" // signature rejected by the registry
)

// MapFieldToErrorCode maps a compile error field to a load error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "table", "columns", "name", "view":
		return ErrCodeInvalidView
	case "params", "type", "default":
		return ErrCodeInvalidParam
	case "where", "op", "column", "param", "value":
		return ErrCodeInvalidFilter
	case "order_by", "limit", "offset", "action":
		return ErrCodeInvalidAction
	case "operation":
		return ErrCodeInvalidOperation
	default:
		return ErrCodeGeneric
	}
}
