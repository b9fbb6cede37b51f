package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Source file errors. ErrParse means the file cannot be parsed at all and
	// always aborts the whole parse.
	ErrParse      ErrorCode = "PARSE"
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Backend errors
	ErrBackendNotFound ErrorCode = "BACKEND_NOT_FOUND"
	ErrCommandFailed   ErrorCode = "COMMAND_FAILED"
)

// PkgmanError represents a structured error with code and details
type PkgmanError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PkgmanError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PkgmanError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PkgmanError) Is(target error) bool {
	var targetErr *PkgmanError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PkgmanError with the given code and message
func New(code ErrorCode, message string) *PkgmanError {
	return &PkgmanError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PkgmanError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PkgmanError {
	return &PkgmanError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PkgmanError
func Wrap(err error, code ErrorCode, message string) *PkgmanError {
	if err == nil {
		return nil
	}
	return &PkgmanError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PkgmanError {
	if err == nil {
		return nil
	}
	return &PkgmanError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PkgmanError) WithDetail(key string, value interface{}) *PkgmanError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var pkgErr *PkgmanError
	if errors.As(err, &pkgErr) {
		return pkgErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PkgmanError
func GetErrorCode(err error) ErrorCode {
	var pkgErr *PkgmanError
	if errors.As(err, &pkgErr) {
		return pkgErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PkgmanError
func GetErrorDetails(err error) map[string]interface{} {
	var pkgErr *PkgmanError
	if errors.As(err, &pkgErr) {
		return pkgErr.Details
	}
	return nil
}

// NotFound builds the error returned when a path is missing or of the wrong kind.
func NotFound(path, reason string) *PkgmanError {
	return Newf(ErrNotFound, "path '%s' %s", path, reason).WithDetail("path", path)
}

// Parse builds the error returned for a structurally invalid source file.
func Parse(path string, line int, format string, args ...interface{}) *PkgmanError {
	err := Newf(ErrParse, format, args...).WithDetail("line", line)
	if path != "" {
		err.Message = fmt.Sprintf("%s (%s:%d)", err.Message, path, line)
		err.WithDetail("path", path)
	}
	return err
}
