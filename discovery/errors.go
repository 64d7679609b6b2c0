package discovery

import "errors"

var (
	// ErrIntrospectionFailed indicates probe output that could not be parsed:
	// a broken contract between generator and parser, not a caller bug.
	ErrIntrospectionFailed = errors.New("introspection failed")

	// ErrClassNotFound indicates the named class does not resolve.
	ErrClassNotFound = errors.New("class not found")

	// ErrFunctionNotFound indicates the named function does not resolve.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrInvalidKind indicates an unknown SearchAPI kind.
	ErrInvalidKind = errors.New("invalid search kind")

	// ErrInvalidName indicates an empty class name or function path.
	ErrInvalidName = errors.New("invalid name")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")
)
