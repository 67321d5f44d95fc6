package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an expected absence, such as a fixture without a decoded companion.
var ErrNotFound = errors.New("not found")

// ParseError is returned when a directory path does not have the expected arity.
// Callers skip the directory with a warning.
type ParseError struct {
	Path     string
	Segments int
	Want     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: got %d path segments, want %d", e.Path, e.Segments, e.Want)
}

// FetchError is a failed client load of one resource.
type FetchError struct {
	Path   string
	Status int
	Cause  error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("fetch %s: status %d", e.Path, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// SetupError aborts an offline run, such as a failed download or a bad version string.
type SetupError struct {
	Message string
	Cause   error
}

func (e *SetupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SetupError) Unwrap() error {
	return e.Cause
}

// Setupf builds a SetupError with a formatted message.
func Setupf(cause error, format string, args ...interface{}) *SetupError {
	return &SetupError{Message: fmt.Sprintf(format, args...), Cause: cause}
}
