package domain

import (
	"errors"
	"fmt"
)

// FormatError reports input that does not match the expected syntax.
type FormatError struct {
	Input    string
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %q: expected %s", e.Input, e.Expected)
}

// RangeError reports a syntactically valid value outside its allowed bounds.
type RangeError struct {
	Input  string
	Bounds string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %q out of range: %s", e.Input, e.Bounds)
}

// ZeroDurationError reports a duration that parses to zero seconds.
type ZeroDurationError struct {
	Input string
}

func (e *ZeroDurationError) Error() string {
	return fmt.Sprintf("time worked must be greater than 0 minutes (got %q)", e.Input)
}

// BackendError wraps a failed call to either backend service.
type BackendError struct {
	Service string
	Op      string
	Status  int
	Body    string
	Err     error
}

func (e *BackendError) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Service, e.Op, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d", e.Service, e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s %s failed", e.Service, e.Op)
	}
}

func (e *BackendError) Unwrap() error { return e.Err }

// AuthError reports a ticket-index session that stayed invalid after a refresh.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "ticket index authentication failed"
	}
	return fmt.Sprintf("ticket index authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsValidation reports whether err is one of the local input validation kinds.
func IsValidation(err error) bool {
	var fe *FormatError
	var re *RangeError
	var ze *ZeroDurationError
	return errors.As(err, &fe) || errors.As(err, &re) || errors.As(err, &ze)
}
