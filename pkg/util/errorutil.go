package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures surfaced by the backend gateway.
type Kind string

const (
	KindValidation           Kind = "VALIDATION_FAILED"
	KindAuthorizationExpired Kind = "AUTHORIZATION_EXPIRED"
	KindAuthorizationDenied  Kind = "AUTHORIZATION_DENIED"
	KindNetworkUnavailable   Kind = "NETWORK_UNAVAILABLE"
	KindStaleProfile         Kind = "STALE_PROFILE"
)

// APIError standardizes failures returned by backend calls.
type APIError struct {
	Kind    Kind
	Message string
	// ServerMessage is the error text from the response body, empty when the server sent none.
	ServerMessage string
	HTTPStatus    int
	Method        string
	Path          string
	Err           error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError constructs an APIError.
func NewAPIError(kind Kind, message string, status int, path string) *APIError {
	return &APIError{Kind: kind, Message: message, HTTPStatus: status, Path: path}
}

func NewValidationError(message string, status int, path string) error {
	if status == 0 {
		status = http.StatusBadRequest
	}
	apiErr := NewAPIError(KindValidation, message, status, path)
	apiErr.ServerMessage = message
	if message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func NewAuthorizationExpired(message, path string) error {
	apiErr := NewAPIError(KindAuthorizationExpired, message, http.StatusUnauthorized, path)
	apiErr.ServerMessage = message
	if message == "" {
		apiErr.Message = "session expired"
	}
	return apiErr
}

func NewAuthorizationDenied(message, path string) error {
	apiErr := NewAPIError(KindAuthorizationDenied, message, http.StatusForbidden, path)
	apiErr.ServerMessage = message
	if message == "" {
		apiErr.Message = "admin privileges required"
	}
	return apiErr
}

func NewNetworkUnavailable(path string, err error) error {
	return &APIError{
		Kind:    KindNetworkUnavailable,
		Message: "network unavailable",
		Path:    path,
		Err:     err,
	}
}

func NewStaleProfile(err error) error {
	return &APIError{
		Kind:    KindStaleProfile,
		Message: "profile could not be refreshed",
		Err:     err,
	}
}

// ToAPIError returns the APIError in err's chain, if any.
func ToAPIError(err error) (*APIError, bool) {
	if err == nil {
		return nil, false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf reports the failure kind of err, or "" when err is not an APIError.
func KindOf(err error) Kind {
	if apiErr, ok := ToAPIError(err); ok {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOr returns the server supplied message, or fallback when none was supplied.
func MessageOr(err error, fallback string) string {
	if apiErr, ok := ToAPIError(err); ok && apiErr.ServerMessage != "" {
		return apiErr.ServerMessage
	}
	return fallback
}
