// Package apperr is the error taxonomy shared by the course, media and
// payment layers. Errors carry a Kind that handlers map to an HTTP status,
// and a caller-safe Message. The wrapped Err is for logs only.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	Internal Kind = iota
	Validation
	NotFound
	Unauthorized
	Forbidden
	ServiceNotConfigured
	UpstreamFailure
	ServiceDisabled
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case ServiceNotConfigured:
		return "service_not_configured"
	case UpstreamFailure:
		return "upstream_failure"
	case ServiceDisabled:
		return "service_disabled"
	}
	return "internal"
}

// Status returns the HTTP status for k.
func (k Kind) Status() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case UpstreamFailure:
		return http.StatusBadGateway
	case ServiceDisabled:
		return http.StatusServiceUnavailable
	}
	// ServiceNotConfigured is a server-side problem; it keeps a distinct
	// message but shares the 500 status with Internal.
	return http.StatusInternalServerError
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error of kind k with a caller-safe message.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap classifies err with kind k and message msg.
func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

// Invalid is shorthand for a Validation error with a formatted message.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...)}
}

// Missing is shorthand for a NotFound error.
func Missing(what string) *Error {
	return &Error{Kind: NotFound, Message: what + " not found"}
}

// Denied is shorthand for a Forbidden error.
func Denied(msg string) *Error {
	return &Error{Kind: Forbidden, Message: msg}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err. Unclassified errors are Internal.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err carries kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
