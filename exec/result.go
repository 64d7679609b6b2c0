package exec

import (
	"time"

	"github.com/jonwraymond/tooldiscovery/index"
)

// Result represents the outcome of a single operation call.
type Result struct {
	// Value is the JSON-serializable operation output. It may be set even
	// when Error is non-nil: an advisory timeout keeps the execution result.
	Value any

	// OperationID is the canonical ID of the called operation.
	OperationID string

	// Duration is how long the call took.
	Duration time.Duration

	// Error is non-nil if the call failed.
	Error error
}

// OK returns true if the result has no error.
func (r Result) OK() bool {
	return r.Error == nil
}

// Code returns the wire error code, or "" on success.
func (r Result) Code() string {
	return ErrorCode(r.Error)
}

// OperationSummary is an alias to index.Summary for search results.
type OperationSummary = index.Summary

// RuntimeInfo is the runtime_info operation output.
type RuntimeInfo struct {
	Info      string `json:"info"`
	Host      string `json:"host"`
	Available bool   `json:"available"`
	Validated bool   `json:"validated"`
}

// Listing wraps a list output with its length.
type Listing[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func listing[T any](items []T) Listing[T] {
	if items == nil {
		items = []T{}
	}
	return Listing[T]{Items: items, Count: len(items)}
}
