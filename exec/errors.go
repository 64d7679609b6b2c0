package exec

import (
	"errors"

	"github.com/jonwraymond/scriptbridge/code"
	"github.com/jonwraymond/scriptbridge/discovery"
	"github.com/jonwraymond/scriptbridge/runtime"
	"github.com/jonwraymond/scriptbridge/sourcefs"
)

// Errors returned by Call.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSourceDisabled   = errors.New("source tree not configured")
)

// Wire error codes.
const (
	CodeRuntimeUnavailable  = "RUNTIME_UNAVAILABLE"
	CodeEmptyInput          = "EMPTY_INPUT"
	CodeRuntimeError        = "RUNTIME_ERROR"
	CodeTimeoutExceeded     = "TIMEOUT_EXCEEDED"
	CodeIntrospectionFailed = "INTROSPECTION_FAILED"
	CodeClassNotFound       = "CLASS_NOT_FOUND"
	CodeFunctionNotFound    = "FUNCTION_NOT_FOUND"
	CodeInvalidPath         = "INVALID_PATH"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternal            = "INTERNAL"
)

// ErrorCode classifies err into a stable wire code. A nil error has no code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, code.ErrRuntimeUnavailable), errors.Is(err, runtime.ErrRuntimeUnavailable):
		return CodeRuntimeUnavailable
	case errors.Is(err, code.ErrEmptyInput):
		return CodeEmptyInput
	case errors.Is(err, code.ErrTimeoutExceeded):
		return CodeTimeoutExceeded
	case errors.Is(err, discovery.ErrClassNotFound):
		return CodeClassNotFound
	case errors.Is(err, discovery.ErrFunctionNotFound):
		return CodeFunctionNotFound
	case errors.Is(err, discovery.ErrIntrospectionFailed):
		return CodeIntrospectionFailed
	case errors.Is(err, code.ErrRuntimeError):
		return CodeRuntimeError
	case errors.Is(err, sourcefs.ErrInvalidPath):
		return CodeInvalidPath
	case errors.Is(err, sourcefs.ErrNotFound), errors.Is(err, ErrUnknownOperation), errors.Is(err, ErrSourceDisabled):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, discovery.ErrInvalidKind),
		errors.Is(err, discovery.ErrInvalidName),
		errors.Is(err, sourcefs.ErrInvalidPattern),
		errors.Is(err, runtime.ErrInvalidCommand):
		return CodeInvalidInput
	}
	return CodeInternal
}
