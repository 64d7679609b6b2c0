package runtime

import "errors"

// Errors shared by host backends.
var (
	// ErrRuntimeUnavailable is returned when the interpreter is not loaded or
	// not initialized.
	ErrRuntimeUnavailable = errors.New("runtime unavailable")

	// ErrHostFault is returned when the host API itself fails, as opposed to
	// the executed code raising.
	ErrHostFault = errors.New("host fault")

	// ErrInvalidCommand is returned when a Command fails validation.
	ErrInvalidCommand = errors.New("invalid command")
)
