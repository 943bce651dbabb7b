package api

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every failure the client can report.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport: network failure, non-2xx status or a body that is not the expected JSON.
	KindTransport
	// KindApplication: the backend answered with success:false.
	KindApplication
	// KindValidation: the request was rejected locally and never sent.
	KindValidation
	// KindInitialization: the client cannot be set up (e.g. no session id).
	KindInitialization
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	case KindValidation:
		return "validation"
	case KindInitialization:
		return "initialization"
	default:
		return "unknown"
	}
}

type TransportError struct {
	Op string
	// StatusCode is zero when the request never got a response.
	StatusCode int
	Status     string
	RequestID  string
	// Message is the backend's explanation from an error body, when it sent one.
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: HTTP %s: %s", e.Op, e.Status, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %s", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": transport failure"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTP reports whether the failure is a non-success HTTP status.

type ApplicationError struct {
	Op        string
	Message   string
	RequestID string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return e.Op + ": request failed"
	}
	return e.Message
}

// EmptyResultError is returned when a suggestion request produced nothing usable: either the
// backend reported failure or it returned zero suggestions.
type EmptyResultError struct {
	Op      string
	Message string
}

const noSuggestionsMessage = "no suggestions were generated"

func (e *EmptyResultError) Error() string {
	if e.Message == "" {
		return noSuggestionsMessage
	}
	return e.Message
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type InitializationError struct {
	Message string
	Err     error
}

func (e *InitializationError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ErrSessionIDNotFound is wrapped by the InitializationError returned when a board URL has no
// session_id query parameter.
var ErrSessionIDNotFound = errors.New("session ID not found")

// KindOf classifies err. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var te *TransportError
	var ae *ApplicationError
	var ee *EmptyResultError
	var ve *ValidationError
	var ie *InitializationError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ie):
		return KindInitialization
	case errors.As(err, &ae), errors.As(err, &ee):
		return KindApplication
	case errors.As(err, &te):
		return KindTransport
	default:
		return KindUnknown
	}
}

// RequestIDOf returns the X-Request-ID of the request that failed, when known.
func RequestIDOf(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.RequestID
	}
	var ae *ApplicationError
	if errors.As(err, &ae) {
		return ae.RequestID
	}
	return ""
}

// Message returns the text to show a user: the backend's own message when it sent one,
// fallback for other backend and transport failures, and the error text for local errors.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var ae *ApplicationError
	if errors.As(err, &ae) {
		if strings.TrimSpace(ae.Message) != "" {
			return ae.Message
		}
		return fallback
	}
	var ee *EmptyResultError
	if errors.As(err, &ee) {
		return ee.Error()
	}
	var te *TransportError
	if errors.As(err, &te) {
		if strings.TrimSpace(te.Message) != "" {
			return te.Message
		}
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
