package registry

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes registry declaration errors.
type ConfigErrorCode string

const (
	// ErrCodeDuplicateOperation indicates two operations of the same kind
	// share a name.
	ErrCodeDuplicateOperation ConfigErrorCode = "DUPLICATE_OPERATION"

	// ErrCodeInvalidSignature indicates a malformed operation declaration.
	ErrCodeInvalidSignature ConfigErrorCode = "INVALID_SIGNATURE"
)

// ConfigError is raised when a registry is built from bad declarations.
type ConfigError struct {
	Code    ConfigErrorCode
	Kind    Kind
	Name    string
	Param   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s %s, parameter %s: %s", e.Code, e.Kind, e.Name, e.Param, e.Message)
	}
	return fmt.Sprintf("%s: %s %s: %s", e.Code, e.Kind, e.Name, e.Message)
}

// IsDuplicateOperation reports whether err contains a DUPLICATE_OPERATION
// error.
func IsDuplicateOperation(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeDuplicateOperation
	}
	return false
}

// IsInvalidSignature reports whether err contains an INVALID_SIGNATURE
// error.
func IsInvalidSignature(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidSignature
	}
	return false
}
