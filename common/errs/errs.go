// Package errs is the error taxonomy shared by every resolver component.
package errs

import (
	"errors"
	"fmt"

	jujuerrors "github.com/juju/errors"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindParse is a malformed magnet URI or malformed/non-canonical bencoded input.
	KindParse
	// KindTimeout means the exchange produced no metadata within the attempt budget.
	KindTimeout
	// KindUnavailable means the protocol engine could not be initialised.
	KindUnavailable
	// KindCache is a persistence failure on read or write.
	KindCache
	// KindInvalid is a bad argument, e.g. a filename that scrubs to nothing.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindTimeout:
		return "TimeoutError"
	case KindUnavailable:
		return "UnavailableDependencyError"
	case KindCache:
		return "CacheError"
	case KindInvalid:
		return "ValueError"
	default:
		return "Error"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: KindTimeout}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func newf(kind Kind, format string, args ...any) error {
	return jujuerrors.Trace(&Error{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func Parsef(format string, args ...any) error {
	return newf(KindParse, format, args...)
}

func Timeoutf(format string, args ...any) error {
	return newf(KindTimeout, format, args...)
}

func Unavailablef(format string, args ...any) error {
	return newf(KindUnavailable, format, args...)
}

func Invalidf(format string, args ...any) error {
	return newf(KindInvalid, format, args...)
}

// Wrap attaches kind and message to cause. A nil cause yields nil.
func Wrap(kind Kind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return jujuerrors.Trace(&Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause})
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
