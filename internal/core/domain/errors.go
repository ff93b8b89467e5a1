// Package domain defines the core value types of SlotKV.
package domain

import (
	"errors"
	"fmt"
)

// DomainError is a storage error carrying a stable code.
//
// Fatal errors signal a broken invariant or an unusable medium. They are
// never retried and must reach the caller unchanged.
type DomainError struct {
	Code    string // e.g. "SK-TRIM-5000"
	Message string
	Details string
	Fatal   bool
	Cause   error
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a recoverable DomainError.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

func newFatalError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Fatal:   true,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithDetailsf is WithDetails with formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return code == "" || de.Code == code
	}
	return false
}

// IsFatal reports whether err wraps a fatal DomainError.
func IsFatal(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Fatal
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

// Capacity errors. Set reports these as a plain false.
var (
	// ErrCapacityExhausted indicates the entry set no longer fits the slot budget.
	ErrCapacityExhausted = NewDomainError("SK-CAP-4090", "slot capacity exhausted")

	// ErrRecordTooLarge indicates a record cannot fit even into an empty slot.
	ErrRecordTooLarge = NewDomainError("SK-REC-4130", "record exceeds slot size")
)

// Input errors.
var (
	// ErrInvalidRecord indicates a key or value uses reserved characters.
	ErrInvalidRecord = NewDomainError("SK-REC-4000", "invalid record")

	// ErrInvalidLocation indicates a malformed location name.
	ErrInvalidLocation = NewDomainError("SK-LOC-4000", "invalid location")
)

// Fatal errors.
var (
	// ErrTrimNonConvergent indicates the trim algorithm exhausted its
	// iteration bound, which means the estimator is inconsistent.
	ErrTrimNonConvergent = newFatalError("SK-TRIM-5000", "trim did not converge")

	// ErrMediumUnavailable indicates the slot medium cannot be used at all.
	ErrMediumUnavailable = newFatalError("SK-MED-5030", "slot medium unavailable")
)

// ErrMediumIO wraps a failed read or write against the slot medium.
var ErrMediumIO = NewDomainError("SK-MED-5000", "slot medium i/o failed")
