package code

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for error classification.
var (
	// ErrRuntimeUnavailable indicates the interpreter is not loaded or not
	// initialized.
	ErrRuntimeUnavailable = errors.New("runtime unavailable")

	// ErrEmptyInput indicates blank code or an empty expression.
	ErrEmptyInput = errors.New("empty input")

	// ErrRuntimeError indicates an exception inside executed code, or a
	// fault in the host API itself.
	ErrRuntimeError = errors.New("runtime error")

	// ErrTimeoutExceeded indicates the measured execution time exceeded the
	// advisory timeout.
	ErrTimeoutExceeded = errors.New("timeout exceeded")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")
)

// CodeError represents an exception raised by executed code.
// It includes optional source location information for debugging.
type CodeError struct {
	// Message describes the error.
	Message string

	// Line is the 1-based line number where the error occurred.
	// Zero indicates the line is unknown.
	Line int

	// Column is the 1-based column number where the error occurred.
	// Zero indicates the column is unknown.
	Column int

	// Err is the underlying error, if any.
	Err error
}

// Error returns the error message, including line and column if available.
func (e *CodeError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	case e.Line > 0:
		return fmt.Sprintf("%s (line %d)", e.Message, e.Line)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CodeError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// CodeError matches ErrRuntimeError to allow sentinel-style error checking.
func (e *CodeError) Is(target error) bool {
	return target == ErrRuntimeError
}

// TimeoutError reports an execution that ran longer than its advisory limit.
// The execution itself completed; the limit was checked afterwards.
type TimeoutError struct {
	Limit   time.Duration
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%v: took %v, advisory limit %v",
		ErrTimeoutExceeded, e.Elapsed.Round(time.Millisecond), e.Limit)
}

// Is reports whether target is ErrTimeoutExceeded.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeoutExceeded
}
