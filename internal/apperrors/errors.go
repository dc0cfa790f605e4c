package apperrors

import (
	"errors"
	"fmt"
)

// AppError is the error type shared by the analysis pipeline and the HTTP layer.
type AppError struct {
	Code    string
	Message string
	Status  int    // upstream HTTP status, UPSTREAM_ERROR only
	Body    string // upstream response body, UPSTREAM_ERROR only
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// wraps an error with a code and message
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Upstream builds an UPSTREAM_ERROR carrying the status and body returned by a remote service.
func Upstream(service string, status int, body string, cause error) *AppError {
	msg := fmt.Sprintf("%s API error", service)
	if status > 0 {
		msg = fmt.Sprintf("%s API error: %d", service, status)
	}
	return &AppError{
		Code:    CodeUpstream,
		Message: msg,
		Status:  status,
		Body:    body,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf returns the human-readable message of the first AppError in err's chain.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return CodeOf(err) == code
}

// Error code constants
const (
	CodeInternal          = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidURLFormat  = "INVALID_URL_FORMAT"
	CodeConfigMissing     = "CONFIGURATION_MISSING"
	CodeUpstream          = "UPSTREAM_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeMalformedAnalysis = "MALFORMED_ANALYSIS_RESPONSE"
)
