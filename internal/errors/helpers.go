package errors

import "errors"

// As and Is re-export the standard helpers so callers only import this
// package.
func As(err error, target **Error) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }

// find returns the nearest *Error in the chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// GetCode is CodeOK for nil and CodeInternal for errors from outside this
// package.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e, ok := find(err); ok {
		return e.Code
	}
	return CodeInternal
}

func GetMeta(err error) map[string]any {
	if e, ok := find(err); ok {
		return e.Meta
	}
	return nil
}

// GetMessage returns the outermost player-facing message, falling back to
// the raw error text.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// HasCode reports whether err classifies as code.
func HasCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

func IsNotFound(err error) bool           { return HasCode(err, CodeNotFound) }
func IsInvalidArgument(err error) bool    { return HasCode(err, CodeInvalidArgument) }
func IsFailedPrecondition(err error) bool { return HasCode(err, CodeFailedPrecondition) }
func IsOutOfRange(err error) bool         { return HasCode(err, CodeOutOfRange) }
