package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and context
type Error struct {
	Code    Code
	Domain  string
	Message string
	Cause   error
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrUsage         = &Error{Code: CodeUsage}
	ErrConfiguration = &Error{Code: CodeConfigurationInvalid}
	ErrCommandFailed = &Error{Code: CodeCommandFailed}
	ErrParseFailed   = &Error{Code: CodeParseFailed}
)

// New creates a new error with the given code, domain, message, and optional cause
func New(code Code, domain string, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Domain:  domain,
		Message: message,
		Cause:   cause,
	}
}

// Usage creates a usage error.
func Usage(format string, args ...any) *Error {
	return New(CodeUsage, "cli", fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Domain, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Domain, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error. A parse failure also
// matches ErrCommandFailed.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code.IsA(t.Code)
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
