package errdefs

import (
	"errors"
	"fmt"
)

//nolint:golint,gochecknoglobals // errors.New() is not const
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrMissingRequestBody = errors.New("missing request body")
	ErrUnmarshal          = errors.New("failed to unmarshall request body")
	ErrBadRequest         = errors.New("bad request")
	ErrInternal           = errors.New("internal")
)

// ConflictError reports an attempt to create a resource that already exists.
// The message is resource specific and is returned to the client verbatim.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Conflict returns a ConflictError with the given message.
func Conflict(message string) error {
	return &ConflictError{Message: message}
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// ValidationError reports a malformed or missing request parameter.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation returns a ValidationError with the given message.
func Validation(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// RemoteError is a structured failure surfaced by a remote collaborator
// (registry probe or cluster engine). Message carries the error string
// embedded in the remote response body.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Remote returns a RemoteError carrying the remote status code and the
// message extracted from the response body.
func Remote(statusCode int, message string) error {
	return &RemoteError{StatusCode: statusCode, Message: message}
}

// AsRemote returns the RemoteError wrapped in err, if any.
func AsRemote(err error) (*RemoteError, bool) {
	var r *RemoteError
	ok := errors.As(err, &r)
	return r, ok
}

// UnsupportedTypeError reports a registry type tag outside the closed set.
type UnsupportedTypeError struct {
	Kind string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("Unknown registry type [%s]", e.Kind)
}

// UnsupportedType returns an UnsupportedTypeError for the given tag.
func UnsupportedType(kind string) error {
	return &UnsupportedTypeError{Kind: kind}
}

// IsUnsupportedType reports whether err is an UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var u *UnsupportedTypeError
	return errors.As(err, &u)
}
