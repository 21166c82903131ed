package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingArgument = fmt.Errorf("%w: missing argument", ErrInvalidInput)
	ErrBadScoreFormat  = fmt.Errorf("%w: bad score format", ErrInvalidInput)

	// ErrUnknownField is a programming error: the caller named a field the remote
	// service does not accept for that operation.
	ErrUnknownField = errors.New("unknown field")
)

// ErrorKind categorizes a failed remote call by its HTTP status.
type ErrorKind string

const (
	KindUnauthorized  ErrorKind = "unauthorized"
	KindNotFound      ErrorKind = "not_found"
	KindNotAcceptable ErrorKind = "not_acceptable"
	KindValidation    ErrorKind = "validation"
	KindServer        ErrorKind = "server"
	KindUnrecognized  ErrorKind = "unrecognized"
)

// KindFromStatus maps a non-success status code to its error kind.
func KindFromStatus(status int) ErrorKind {
	switch status {
	case 401:
		return KindUnauthorized
	case 404:
		return KindNotFound
	case 406:
		return KindNotAcceptable
	case 422:
		return KindValidation
	case 500:
		return KindServer
	default:
		return KindUnrecognized
	}
}

// APIError is returned when the remote service answers with a failure status.
type APIError struct {
	Kind     ErrorKind
	Status   int
	Method   string
	Path     string
	Messages []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %s (%d)", e.Method, e.Path, e.Kind, e.Status)
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	return msg
}

// Is lets errors.Is(err, ErrNotFound) match not-found responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}
