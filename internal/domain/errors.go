package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a quiz session id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned for operations on a torn-down session.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrResultNotFound indicates no completion was recorded for a session.
	ErrResultNotFound = errors.New("quiz result not found")

	ErrWrongPhase         = errors.New("operation not permitted in current phase")
	ErrQuestionOutOfRange = errors.New("question index out of range")
	ErrOptionOutOfRange   = errors.New("option index out of range")
	ErrNotAllAnswered     = errors.New("not all questions answered")
	ErrEmptyTopic         = errors.New("topic is required")
	ErrInvalidDifficulty  = errors.New("difficulty must be easy, medium or hard")
	ErrInvalidDirection   = errors.New("direction must be prev or next")
	ErrEmptyUserName      = errors.New("name is required")

	// ErrTransport and ErrMalformedResponse let callers match FetchError kinds with errors.Is.
	ErrTransport         = errors.New("question source transport error")
	ErrMalformedResponse = errors.New("question source malformed response")
)

// ValidationError rejects an operation invoked with bad input or in the wrong phase.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FetchErrorKind distinguishes adapter failures for diagnostics.
type FetchErrorKind int

const (
	TransportError FetchErrorKind = iota + 1
	MalformedResponse
)

func (k FetchErrorKind) String() string {
	switch k {
	case TransportError:
		return "transport"
	case MalformedResponse:
		return "malformed_response"
	}
	return "unknown"
}

// FetchError is returned by question sources.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch questions (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the kind sentinels so callers need not type-assert.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == TransportError
	case ErrMalformedResponse:
		return e.Kind == MalformedResponse
	}
	return false
}

// NewTransportError wraps err as a transport failure.
func NewTransportError(err error) *FetchError {
	return &FetchError{Kind: TransportError, Err: err}
}

// NewMalformedResponse wraps err as a decode or shape failure.
func NewMalformedResponse(err error) *FetchError {
	return &FetchError{Kind: MalformedResponse, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
