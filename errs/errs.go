// Package errs defines the outcomes a store or controller operation can fail
// with. Handlers never pick a status code themselves; util.WriteError maps
// these kinds once at the HTTP boundary.
package errs

import (
	"net/http"

	"github.com/pkg/errors"
)

// NotFoundError reports that an identifier matched no document.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// InvalidError reports a caller mistake: malformed id, malformed body or a
// missing required field.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return e.Reason
}

// StoreError wraps a failed document-store round trip.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Invalid(reason string) error {
	return &InvalidError{Reason: reason}
}

func Invalidf(format string, args ...interface{}) error {
	return &InvalidError{Reason: errors.Errorf(format, args...).Error()}
}

// Store wraps err as a StoreError for op. A nil err stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsInvalid(err error) bool {
	var inv *InvalidError
	return errors.As(err, &inv)
}

// Status returns the HTTP status for err.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case IsInvalid(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing description of err. Store failures keep
// their underlying description.
func Message(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	var inv *InvalidError
	if errors.As(err, &inv) {
		return inv.Error()
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Err.Error()
	}
	return err.Error()
}
