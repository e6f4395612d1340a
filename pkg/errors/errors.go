package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for the validation rules and failure categories
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// SFS lifecycle errors
	ErrNonEmptyDir ErrorCode = "NON_EMPTY_DIR"
	ErrNestedSFS   ErrorCode = "NESTED_SFS"
	ErrNotInSFS    ErrorCode = "NOT_IN_SFS"

	// Collection errors
	ErrInvalidPath       ErrorCode = "INVALID_PATH"
	ErrNestedCollection  ErrorCode = "NESTED_COLLECTION"
	ErrInvalidName       ErrorCode = "INVALID_NAME"
	ErrNameExists        ErrorCode = "NAME_EXISTS"
	ErrUnknownCollection ErrorCode = "UNKNOWN_COLLECTION"

	// Query errors
	ErrNotLinkOrDir       ErrorCode = "NOT_LINK_OR_DIR"
	ErrCollectionNotFound ErrorCode = "COLLECTION_NOT_FOUND"
	ErrStatsNotFound      ErrorCode = "STATS_NOT_FOUND"

	// Filesystem errors
	ErrLinkCreate  ErrorCode = "LINK_CREATE"
	ErrLinkRemove  ErrorCode = "LINK_REMOVE"
	ErrStatsAccess ErrorCode = "STATS_ACCESS"
	ErrWalk        ErrorCode = "WALK"
)

// Kind separates the three failure categories surfaced at the CLI boundary.
type Kind int

const (
	// KindValidation marks user-correctable precondition failures. No state
	// is mutated before a validation error is raised.
	KindValidation Kind = iota
	// KindInternal marks the core's own invariant or I/O failures.
	KindInternal
	// KindUnknown marks anything else; callers must not assume it is safe
	// to continue.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// SfsError represents a structured error with a kind, code and details
type SfsError struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SfsError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SfsError) Unwrap() error {
	return e.Wrapped
}

// Is matches two SfsErrors by code
func (e *SfsError) Is(target error) bool {
	var targetErr *SfsError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// NewValidation creates a validation error with the given code and message
func NewValidation(code ErrorCode, message string) *SfsError {
	return &SfsError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// NewValidationf creates a validation error with a formatted message
func NewValidationf(code ErrorCode, format string, args ...interface{}) *SfsError {
	return NewValidation(code, fmt.Sprintf(format, args...))
}

// NewInternal creates an internal error with the given code and message
func NewInternal(code ErrorCode, message string) *SfsError {
	return &SfsError{
		Kind:    KindInternal,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapInternal wraps an existing error as an internal error
func WrapInternal(err error, code ErrorCode, message string) *SfsError {
	if err == nil {
		return nil
	}
	return &SfsError{
		Kind:    KindInternal,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WrapInternalf wraps an existing error as an internal error with a
// formatted message
func WrapInternalf(err error, code ErrorCode, format string, args ...interface{}) *SfsError {
	if err == nil {
		return nil
	}
	return WrapInternal(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error
func (e *SfsError) WithDetail(key string, value interface{}) *SfsError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var sfsErr *SfsError
	if errors.As(err, &sfsErr) {
		return sfsErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if the
// error is not an SfsError
func GetErrorCode(err error) ErrorCode {
	var sfsErr *SfsError
	if errors.As(err, &sfsErr) {
		return sfsErr.Code
	}
	return ErrUnknown
}

// GetKind returns the failure kind of an error. Errors that are not
// SfsErrors are reported as unknown.
func GetKind(err error) Kind {
	var sfsErr *SfsError
	if errors.As(err, &sfsErr) {
		return sfsErr.Kind
	}
	return KindUnknown
}

// IsValidation reports whether the error is a validation failure.
func IsValidation(err error) bool {
	return GetKind(err) == KindValidation
}
