package sourcefs

import "errors"

var (
	// ErrInvalidPath indicates a path rejected by validation, or one that
	// resolves outside its base directory.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNotFound indicates a valid path that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPattern indicates an empty search string or a glob that does
	// not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")
)
