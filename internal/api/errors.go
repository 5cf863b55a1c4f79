package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Vendor application codes the dispatcher reacts to.
const (
	CodeOK                      = 0
	CodeAccessTokenMissing      = 99991661
	CodeTenantTokenInvalid      = 99991663
	CodeAppTokenInvalid         = 99991664
	CodeUserTokenInvalid        = 99991668
	CodeUserTokenExpired        = 99991677
	CodeRateLimited             = 99991400
	CodeInvalidAppCredentials   = 10014
	CodePermissionDenied        = 99991672
	CodeUserPermissionDenied    = 99991679
	CodeInvalidRequestParameter = 99992402
)

// isTokenExpiredCode reports whether code means the bearer credential is no
// longer accepted and a fresh one may succeed.
func isTokenExpiredCode(code int) bool {
	switch code {
	case CodeAccessTokenMissing, CodeTenantTokenInvalid, CodeAppTokenInvalid,
		CodeUserTokenInvalid, CodeUserTokenExpired:
		return true
	default:
		return false
	}
}

// APIError is an HTTP status error or a non-zero application code in the
// response envelope. StatusCode is 200 for application errors carried by an
// otherwise successful response.
type APIError struct {
	StatusCode int
	Code       int
	Msg        string
	LogID      string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
			return fmt.Sprintf("API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Msg)
		}
		return fmt.Sprintf("API error (code %d): %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Msg)
}

// TokenExpired reports whether the error was caused by a stale access token.
func (e *APIError) TokenExpired() bool {
	return isTokenExpiredCode(e.Code)
}

// RateLimitError represents a rate limit exceeded error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// AuthError represents missing or unusable credentials on the client side.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Reason)
}

// ValidationError is returned before any network I/O when a request is
// incomplete.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("invalid request: %v", e.Err)
	}
	return fmt.Sprintf("invalid %s request: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CircuitBreakerError indicates the circuit breaker is open.
type CircuitBreakerError struct{}

func (e *CircuitBreakerError) Error() string {
	return "circuit breaker is open, too many recent failures"
}

// IsRateLimitError checks if the error is a rate limit error.
func IsRateLimitError(err error) bool {
	var e *RateLimitError
	if errors.As(err, &e) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeRateLimited
}

// IsAuthError checks if the error is an authentication error.
func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

// IsValidationError checks if the error is a caller input error.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsCircuitBreakerError checks if the error is a circuit breaker error.
func IsCircuitBreakerError(err error) bool {
	var e *CircuitBreakerError
	return errors.As(err, &e)
}

// IsTokenExpired reports whether err carries a stale-token application code.
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.TokenExpired()
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}
