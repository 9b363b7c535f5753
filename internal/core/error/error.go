package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes carried in the JSON error envelope.
const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeAI          = "AI_ERROR"
	CodeRateLimited = "RATE_LIMITED"
	CodeNotFound    = "NOT_FOUND"
	CodeInternal    = "INTERNAL_ERROR"
	CodeUpstream    = "UPSTREAM_ERROR"
	CodeConflict    = "CONFLICT"
	CodeUnknown     = "UNKNOWN_ERROR"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "An unexpected error occurred"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// InvalidBodyMessage is returned for payloads that fail validation.
	InvalidBodyMessage = "Invalid request body"
	// RateLimitedMessage is the uniform message for throttled clients.
	RateLimitedMessage = "Too many requests, please try again later."
	// NotFoundMessage is returned for unknown endpoints.
	NotFoundMessage = "Endpoint not found"
	// CompareFailedMessage is returned when the comparison model call fails.
	CompareFailedMessage = "Failed to analyze products. Please try again."
	// SafetyFailedMessage is returned when the safety audit model call fails.
	SafetyFailedMessage = "Failed to analyze ingredients. Please try again."
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// AppError wraps an underlying error with an HTTP status, an envelope code and a safe message.
type AppError struct {
	Err     error
	Status  int
	Code    string
	Message string
	Details []FieldError
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, code, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Validation builds a 400 error listing the failed fields.
func Validation(details ...FieldError) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: InvalidBodyMessage,
		Details: details,
	}
}

// Gateway wraps a failed model call with the user-facing message for that operation.
func Gateway(err error, message string) *AppError {
	return New(err, http.StatusInternalServerError, CodeAI, message)
}

// NotFound builds a 404 error.
func NotFound(message string) *AppError {
	return New(nil, http.StatusNotFound, CodeNotFound, message)
}

// Conflict builds a 409 error for work that is already in progress.
func Conflict(err error, message string) *AppError {
	return New(err, http.StatusConflict, CodeConflict, message)
}

// RateLimited builds the uniform 429 error.
func RateLimited() *AppError {
	return New(nil, http.StatusTooManyRequests, CodeRateLimited, RateLimitedMessage)
}

// Internal hides err behind the generic system message.
func Internal(err error) *AppError {
	return New(err, http.StatusInternalServerError, CodeInternal, SystemErrorMessage)
}

// From returns err as an AppError, converting unknown errors to Internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
