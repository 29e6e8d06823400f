package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("HUB-TEST-4000", "test message"),
			expected: "[HUB-TEST-4000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("HUB-TEST-4001", "test message").WithDetails("extra info"),
			expected: "[HUB-TEST-4001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("HUB-TEST-4000", "message 1")
	err2 := NewDomainError("HUB-TEST-4000", "message 2")
	err3 := NewDomainError("HUB-TEST-4001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("call service: %w", ErrServiceNotFound.WithDetails("light.turn_on"))
	if !errors.Is(wrapped, ErrServiceNotFound) {
		t.Error("errors.Is should see through fmt.Errorf wrapping")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("HUB-TEST-4000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("HUB-TEST-4000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("HUB-TEST-4000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code {
		t.Error("WithDetails should preserve code")
	}
}

func TestIsDomainError(t *testing.T) {
	err := ErrInvalid.WithDetails("bad field")

	if !IsDomainError(err, "") {
		t.Error("IsDomainError(err, \"\") should be true for a DomainError")
	}
	if !IsDomainError(err, ErrInvalid.Code) {
		t.Error("IsDomainError should match by code")
	}
	if IsDomainError(err, ErrUnauthorized.Code) {
		t.Error("IsDomainError should not match a different code")
	}
	if IsDomainError(errors.New("plain"), "") {
		t.Error("IsDomainError should be false for plain errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(fmt.Errorf("wrap: %w", ErrUnauthorized)); got != "HUB-AUTH-4010" {
		t.Errorf("GetErrorCode() = %q, want HUB-AUTH-4010", got)
	}
	if got := GetErrorCode(errors.New("plain")); got != "" {
		t.Errorf("GetErrorCode() = %q, want empty", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalid, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrTokenInvalid, http.StatusUnauthorized},
		{ErrServiceNotFound, http.StatusInternalServerError},
		{ErrSerialization, http.StatusInternalServerError},
		{ErrServiceUnavailable, http.StatusServiceUnavailable},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrConfiguration, http.StatusInternalServerError},
		{NewDomainError("HUB-X-4040", "missing"), http.StatusNotFound},
		{NewDomainError("bogus", "no status"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
