package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Error carries a Code for the transports, a message safe to show a player,
// an optional cause and string-keyed metadata that travels with it through
// Wrap and across gRPC.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports a match for any *Error carrying the same code, so
// errors.Is(err, NotFound("")) works as a code check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMeta sets a metadata entry and returns the receiver for chaining.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap keeps the code and metadata of the nearest *Error in the chain. Any
// other cause becomes CodeInternal.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	var inner *Error
	if errors.As(err, &inner) {
		code = inner.Code
	}
	return wrap(err, code, message)
}

func Wrapf(err error, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode reclassifies err and keeps its metadata.
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return wrap(err, code, message)
}

// wrap copies the inner metadata so later WithMeta calls on the wrapper never
// leak into the cause.
func wrap(err error, code Code, message string) *Error {
	wrapped := &Error{Code: code, Message: message, Cause: err}
	var inner *Error
	if errors.As(err, &inner) && len(inner.Meta) > 0 {
		wrapped.Meta = maps.Clone(inner.Meta)
	}
	return wrapped
}

func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

func FailedPrecondition(message string) *Error { return New(CodeFailedPrecondition, message) }

func FailedPreconditionf(format string, args ...any) *Error {
	return Newf(CodeFailedPrecondition, format, args...)
}

func OutOfRangef(format string, args ...any) *Error {
	return Newf(CodeOutOfRange, format, args...)
}

func Internal(message string) *Error { return New(CodeInternal, message) }

func Unavailable(message string) *Error { return New(CodeUnavailable, message) }
