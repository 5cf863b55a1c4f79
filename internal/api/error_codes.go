package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable classification of a failed call.
type ErrorCode string

const (
	// ErrBadRequest indicates a malformed request (HTTP 400).
	ErrBadRequest ErrorCode = "bad_request"
	// ErrUnauthorized indicates authentication is required or failed (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrTokenExpired indicates the access token was rejected as stale.
	ErrTokenExpired ErrorCode = "token_expired"
	// ErrForbidden indicates the app or user lacks a required scope (HTTP 403).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound indicates the requested resource does not exist (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrConflict indicates a conflict with current state (HTTP 409).
	ErrConflict ErrorCode = "conflict"
	// ErrValidation indicates input validation failed.
	ErrValidation ErrorCode = "validation_failed"
	// ErrRateLimited indicates too many requests.
	ErrRateLimited ErrorCode = "rate_limited"
	// ErrServerError indicates an internal server error (HTTP 5xx).
	ErrServerError ErrorCode = "server_error"
	// ErrTimeout indicates the request timed out.
	ErrTimeout ErrorCode = "timeout"
	// ErrCircuitOpen indicates the circuit breaker is open.
	ErrCircuitOpen ErrorCode = "circuit_open"
	// ErrUnknown indicates an unknown or unclassified error.
	ErrUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrTimeout, ErrCircuitOpen, ErrTokenExpired:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'lark auth login' to configure app credentials"
	case ErrTokenExpired:
		return "Retry the command; user tokens need 'lark auth user-login'"
	case ErrForbidden:
		return "Grant the required scope to the app in the developer console"
	case ErrNotFound:
		return "Verify the resource ID exists"
	case ErrRateLimited:
		return "Wait a moment and retry"
	case ErrValidation:
		return "Check the input values"
	case ErrBadRequest:
		return "Check the request format and parameters"
	case ErrConflict:
		return "The resource state may have changed; refresh and retry"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTimeout:
		return "The request timed out; check network connectivity and retry"
	case ErrCircuitOpen:
		return "Too many recent failures; wait before retrying"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// ErrorCodeFromVendor maps an application code from the response envelope.
// ok is false when the code carries no classification of its own and the
// HTTP status should decide.
func ErrorCodeFromVendor(code int) (ErrorCode, bool) {
	switch code {
	case CodeTenantTokenInvalid, CodeAppTokenInvalid, CodeUserTokenInvalid, CodeUserTokenExpired:
		return ErrTokenExpired, true
	case CodeAccessTokenMissing, CodeInvalidAppCredentials:
		return ErrUnauthorized, true
	case CodePermissionDenied, CodeUserPermissionDenied:
		return ErrForbidden, true
	case CodeRateLimited:
		return ErrRateLimited, true
	case CodeInvalidRequestParameter:
		return ErrValidation, true
	default:
		return "", false
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromAPIError converts an APIError to a StructuredError.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	code, ok := ErrorCodeFromVendor(apiErr.Code)
	if !ok {
		code = ErrorCodeFromStatus(apiErr.StatusCode)
	}
	ctx := map[string]any{}
	if apiErr.StatusCode != 0 {
		ctx["status_code"] = apiErr.StatusCode
	}
	if apiErr.Code != 0 {
		ctx["vendor_code"] = apiErr.Code
	}
	if apiErr.LogID != "" {
		ctx["log_id"] = apiErr.LogID
	}
	return &StructuredError{
		Code:       code,
		Message:    apiErr.Msg,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
		Context:    ctx,
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		out := NewStructuredError(ErrRateLimited, rateLimitErr.Error())
		out.Context = map[string]any{"retry_after": rateLimitErr.RetryAfter.String()}
		return out
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return NewStructuredError(ErrUnauthorized, authErr.Error())
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewStructuredError(ErrValidation, validationErr.Error())
	}

	var cbErr *CircuitBreakerError
	if errors.As(err, &cbErr) {
		return NewStructuredError(ErrCircuitOpen, cbErr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewStructuredError(ErrTimeout, err.Error())
	}

	return &StructuredError{
		Code:    ErrUnknown,
		Message: err.Error(),
	}
}
