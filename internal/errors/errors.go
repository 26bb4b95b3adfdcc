// Package errors provides structured error classification for collection and
// configuration failures. Collection errors are stored as data on cache nodes,
// so the code carried here is what rules and reports surface to users.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnauthorized indicates authentication or authorization failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeRateLimitExceeded indicates the provider throttled the caller.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeUnavailable indicates a service is temporarily unavailable.
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// StructuredError carries an error code for programmatic handling, a
// human-readable message, the underlying cause, and optional debug context.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause, Context: context}
}

// CodeOf returns the code of the first StructuredError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// apiErrorCodes maps provider API error codes onto ErrorCode values.
// Anything not listed here classifies as ErrCodeInternal.
var apiErrorCodes = map[string]ErrorCode{
	"Throttling":                  ErrCodeRateLimitExceeded,
	"ThrottlingException":         ErrCodeRateLimitExceeded,
	"RequestLimitExceeded":        ErrCodeRateLimitExceeded,
	"TooManyRequestsException":    ErrCodeRateLimitExceeded,
	"SlowDown":                    ErrCodeRateLimitExceeded,
	"AccessDenied":                ErrCodeUnauthorized,
	"AccessDeniedException":       ErrCodeUnauthorized,
	"UnauthorizedOperation":       ErrCodeUnauthorized,
	"UnrecognizedClientException": ErrCodeUnauthorized,
	"InvalidClientTokenId":        ErrCodeUnauthorized,
	"ExpiredToken":                ErrCodeUnauthorized,
	"NoSuchEntity":                ErrCodeNotFound,
	"ResourceNotFoundException":   ErrCodeNotFound,
	"NoSuchBucket":                ErrCodeNotFound,
	"ValidationError":             ErrCodeInvalidRequest,
	"InvalidParameterValue":       ErrCodeInvalidRequest,
	"ServiceUnavailable":          ErrCodeUnavailable,
	"InternalFailure":             ErrCodeUnavailable,
}

// Classify maps a raw provider error onto an ErrorCode. Context deadlines
// become ErrCodeTimeout; smithy API errors are matched on their error code.
func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		if code, ok := apiErrorCodes[apiErr.ErrorCode()]; ok {
			return code
		}
	}
	return ErrCodeInternal
}

// IsAPIErrorCode reports whether err carries a smithy API error with the
// given error code.
func IsAPIErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return stderrors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
