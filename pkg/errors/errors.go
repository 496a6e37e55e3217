package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies failures so callers can decide whether to retry
type ErrorType string

const (
	ErrorTypeInvalidName         ErrorType = "invalid_name"
	ErrorTypeInvalidDescriptor   ErrorType = "invalid_descriptor"
	ErrorTypeTransport           ErrorType = "transport"
	ErrorTypeRetryExhausted      ErrorType = "retry_exhausted"
	ErrorTypeConstraintViolation ErrorType = "constraint_violation"
	ErrorTypeParsing             ErrorType = "parsing"
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeServerError         ErrorType = "server_error"
	ErrorTypeHTTPStatus          ErrorType = "http_status"
)

// Error carries a type, an optional HTTP status code and the underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a typed error without a cause
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a typed error around cause
func Wrap(t ErrorType, cause error, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: cause}
}

// WithCode builds a typed error for an HTTP status
func WithCode(t ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{Type: t, Code: code, Message: fmt.Sprintf(format, args...)}
}

// TypeOf returns the type of the first *Error in err's chain, or "" if none
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsType reports whether err's chain holds an *Error of type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Err
	}
	return false
}

// IsRetryable checks if an error type is recovered by reconnecting and retrying
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransport, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a transient condition
func IsRetryableStatusCode(statusCode int) bool {
	switch {
	case statusCode == 429:
		return true
	case statusCode >= 500:
		return true
	default:
		return false
	}
}
