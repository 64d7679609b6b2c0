// Package sourcefs gives read-only access to an installed source tree for
// diagnostics.
//
// All access is locked to a root directory fixed at construction. Caller paths
// are validated before any filesystem call: parent references, home-directory
// expansion and absolute paths outside the configured prefixes are rejected
// with [ErrInvalidPath]. Paths that pass validation are resolved through
// symlinks and rejected again if they leave their base directory.
//
// Glob patterns use github.com/gobwas/glob with '/' as separator. A pattern
// without a slash matches the base name; a pattern with one matches the
// slash-separated path relative to the base, and "**" crosses directories.
package sourcefs
