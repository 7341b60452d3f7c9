package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Validation errors
	ErrValidation    ErrorCode = "VALIDATION_ERROR"
	ErrInvalidRating ErrorCode = "INVALID_RATING"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"

	// Session errors
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrTokenInvalid ErrorCode = "TOKEN_INVALID"

	// Resource errors
	ErrNotFound ErrorCode = "NOT_FOUND"

	// External collaborator errors (storage, label detection)
	ErrUpstream ErrorCode = "UPSTREAM_ERROR"

	ErrRateLimited ErrorCode = "RATE_LIMITED"

	// Internal errors
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
	cause      error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any
func (e *APIError) Unwrap() error {
	return e.cause
}

// New creates a new APIError
func New(code ErrorCode, message string, httpStatus int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WithDetails adds details to an error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// Wrap attaches the underlying cause without exposing it in the JSON body
func (e *APIError) Wrap(err error) *APIError {
	e.cause = err
	return e
}

// Common error constructors
func Validation(message string) *APIError {
	return New(ErrValidation, message, http.StatusBadRequest)
}

func InvalidRating(value any) *APIError {
	return New(ErrInvalidRating, "rating must be an integer between 1 and 5", http.StatusBadRequest).
		WithDetails(map[string]any{"rating": value})
}

func InvalidInput(message string) *APIError {
	return New(ErrInvalidInput, message, http.StatusBadRequest)
}

func NotFound(resource string) *APIError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Unauthorized(message string) *APIError {
	return New(ErrUnauthorized, message, http.StatusUnauthorized)
}

func Upstream(service string, err error) *APIError {
	return New(ErrUpstream, fmt.Sprintf("%s unavailable", service), http.StatusBadGateway).Wrap(err)
}

func RateLimited() *APIError {
	return New(ErrRateLimited, "too many requests", http.StatusTooManyRequests)
}

func Internal(message string) *APIError {
	return New(ErrInternal, message, http.StatusInternalServerError)
}

// As extracts an *APIError from err's chain
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code
func HasCode(err error, code ErrorCode) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == code
}

// FromError converts any error into an APIError, defaulting to internal
func FromError(err error) *APIError {
	if apiErr, ok := As(err); ok {
		return apiErr
	}
	return Internal("an internal error occurred").Wrap(err)
}

// ResponseMeta carries request correlation data on error responses
type ResponseMeta struct {
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse is the standard API error response format
type ErrorResponse struct {
	Success   bool          `json:"success"`
	Error     *APIError     `json:"error"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	Timestamp string        `json:"timestamp"`
}

// NewErrorResponse creates a new error response for the given request
func NewErrorResponse(err *APIError, requestID string) *ErrorResponse {
	resp := &ErrorResponse{
		Success:   false,
		Error:     err,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if requestID != "" {
		resp.Meta = &ResponseMeta{RequestID: requestID}
	}
	return resp
}
