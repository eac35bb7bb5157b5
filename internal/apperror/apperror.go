// Package apperror defines the error taxonomy shared by the stores, the
// auth service and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error for the HTTP boundary
type Kind string

const (
	KindNotFound     Kind = "not_found"    // Referenced entity does not exist
	KindValidation   Kind = "validation"   // Bad input or a violated data rule
	KindConflict     Kind = "conflict"     // Username/email collision, reported as a validation failure
	KindForbidden    Kind = "forbidden"    // Authenticated principal denied by a policy
	KindUnauthorized Kind = "unauthorized" // Anonymous principal denied, or an unusable token
)

// Error is a classified application error
type Error struct {
	Kind    Kind   // Error class
	Field   string // Offending field, empty when not field specific
	Message string // Human readable message
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NotFound builds a NotFound error for the named entity
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Validation builds a field-level Validation error
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Conflict builds a Conflict error on the given field
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// Forbidden builds a Forbidden error
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Unauthorized builds an Unauthorized error
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// KindOf returns the Kind of err, or an empty Kind for unclassified errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given Kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps err to the status code the API answers with. Unclassified
// errors are internal failures.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
