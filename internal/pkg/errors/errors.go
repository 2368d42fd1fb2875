package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so callers can branch without string matching.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindValidation
	KindIntegrity
	KindMalformed
	KindConnection
	KindTimeout
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindIntegrity:
		return "integrity"
	case KindMalformed:
		return "malformed"
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Error is the base error type of the SDK.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Message == "":
		return e.Kind.String() + " error"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below. A timeout is also a connection failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	if t.Kind == KindConnection && e.Kind == KindTimeout {
		return true
	}
	return t.Kind == e.Kind
}

var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrIntegrity     = &Error{Kind: KindIntegrity}
	ErrMalformed     = &Error{Kind: KindMalformed}
	ErrConnection    = &Error{Kind: KindConnection}
	ErrTimeout       = &Error{Kind: KindTimeout}
	ErrAPI           = &Error{Kind: KindAPI}
)

var (
	ErrInvalidSignature = stderrors.New("invalid signature")
	ErrSchemaInvalid    = stderrors.New("schema invalid")
	ErrInvalidURL       = stderrors.New("invalid url")
	ErrNoMorePages      = stderrors.New("No more pages available")
	ErrNoPreviousPages  = stderrors.New("No previous pages available")
)

// KindOf returns the kind of the first *Error or *APIError in err's chain.
func KindOf(err error) Kind {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return KindAPI
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is and As re-export the standard helpers since this package shadows "errors".
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
