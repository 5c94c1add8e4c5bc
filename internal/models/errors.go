package models

import (
	"errors"
	"net/http"
)

// ErrorKind classifies an APIError and determines its HTTP status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindConflict
)

// APIError is an expected failure whose message is safe to show to clients.
type APIError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Status maps the error kind to an HTTP status code.
func (e *APIError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError reports malformed or rejected input (400).
func NewValidationError(msg string) *APIError { return &APIError{Kind: KindValidation, Message: msg} }

// NewAuthError reports missing or bad credentials (401).
func NewAuthError(msg string) *APIError { return &APIError{Kind: KindAuth, Message: msg} }

// NewAuthorizationError reports an authenticated caller lacking permission (403).
func NewAuthorizationError(msg string) *APIError { return &APIError{Kind: KindAuthorization, Message: msg} }

// NewNotFoundError reports a missing resource (404).
func NewNotFoundError(msg string) *APIError { return &APIError{Kind: KindNotFound, Message: msg} }

// NewConflictError reports a clash with existing state (409).
func NewConflictError(msg string) *APIError { return &APIError{Kind: KindConflict, Message: msg} }

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
