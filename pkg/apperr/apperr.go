// Package apperr holds the error taxonomy shared by the domain packages and
// the HTTP layer. Errors carry a Kind (externally visible severity) and a
// stable Code; two errors are considered equal by errors.Is when their codes
// match, so a sentinel can be re-messaged or wrapped without losing identity.
package apperr

import "errors"

// Kind classifies an error by who is at fault and how the boundary should
// report it.
type Kind uint8

const (
	Internal Kind = iota
	Validation
	Unauthenticated
	Forbidden
	NotFound
	Conflict
	InvalidImage
	TooLarge
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InvalidImage:
		return "invalid_image"
	case TooLarge:
		return "too_large"
	default:
		return "internal"
	}
}

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

// New declares an error value, usually a package-level sentinel.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports code equality with another *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// WithMessage returns a copy of e with a different human-readable message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// WrapInternal wraps an infrastructure failure that has no domain meaning.
func WrapInternal(msg string, cause error) *Error {
	return &Error{Kind: Internal, Code: "internal", Message: msg, cause: cause}
}

// As extracts the outermost *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of the outermost *Error in err, or Internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

// HasKind reports whether any *Error in err's chain has kind k.
func HasKind(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == k {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
