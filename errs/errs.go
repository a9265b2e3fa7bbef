// Package errs defines the service error taxonomy and its HTTP mapping.
// Validation and not-found errors surface to the caller with no side
// effects; storage and transport errors are absorbed at the point of use
// and only logged.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// StorageError wraps an object-storage failure. Never fatal to the
// enclosing workflow.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// TransportError wraps a push-transport failure. Never fatal to the
// enclosing workflow.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "push transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// HTTPStatus maps a service error to the response code controllers use.
// Anything unclassified is an internal error.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		var s *StorageError
		var t *TransportError
		if errors.As(err, &s) || errors.As(err, &t) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
