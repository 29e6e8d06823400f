// Package domain defines the core domain models for the hub.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DomainError represents a domain error with a structured error code.
//
// Codes follow the HUB-<AREA>-<STATUS><N> convention; the four digits after
// the area select the HTTP status the error is reported with.
type DomainError struct {
	Code    string // Error code (e.g., "HUB-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HTTPStatus maps an error to the HTTP status it is reported with.
// Errors that are not DomainErrors map to 500.
func HTTPStatus(err error) int {
	code := GetErrorCode(err)
	if code == "" {
		return http.StatusInternalServerError
	}

	idx := strings.LastIndex(code, "-")
	if idx == -1 || len(code)-idx-1 != 4 {
		return http.StatusInternalServerError
	}

	switch code[idx+1 : idx+4] {
	case "400":
		return http.StatusBadRequest
	case "401":
		return http.StatusUnauthorized
	case "403":
		return http.StatusForbidden
	case "404":
		return http.StatusNotFound
	case "409":
		return http.StatusConflict
	case "429":
		return http.StatusTooManyRequests
	case "503":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrConfiguration indicates an invalid setup detected at startup.
	ErrConfiguration = NewDomainError("HUB-CONF-5000", "configuration error")

	// ErrViewRegistered indicates a view was registered more than once.
	ErrViewRegistered = NewDomainError("HUB-CONF-5001", "view already registered")
)

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates the caller is not allowed to perform the request.
	ErrUnauthorized = NewDomainError("HUB-AUTH-4010", "unauthorized")

	// ErrTokenMalformed indicates the bearer credential could not be parsed.
	ErrTokenMalformed = NewDomainError("HUB-AUTH-4011", "malformed access token")

	// ErrTokenInvalid indicates the access token is unknown or its secret does not match.
	ErrTokenInvalid = NewDomainError("HUB-AUTH-4012", "invalid access token")
)

// ============================================================================
// Service Errors (SVC)
// ============================================================================

var (
	// ErrInvalid indicates the input to a handler failed validation.
	ErrInvalid = NewDomainError("HUB-SVC-4000", "invalid input")

	// ErrServiceNotFound indicates a handler referenced a service that is not registered.
	ErrServiceNotFound = NewDomainError("HUB-SVC-5000", "service not found")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = NewDomainError("HUB-SYS-5000", "internal server error")

	// ErrSerialization indicates a value could not be encoded as JSON.
	ErrSerialization = NewDomainError("HUB-SYS-5001", "unable to serialize to JSON")

	// ErrServiceUnavailable indicates the hub is not running.
	ErrServiceUnavailable = NewDomainError("HUB-SYS-5030", "service unavailable")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("HUB-SYS-4290", "too many requests")
)
