package code

import (
	"time"

	"github.com/jonwraymond/scriptbridge/runtime"
)

// ExecuteParams specifies the parameters for executing code.
type ExecuteParams struct {
	// Code is the source code to execute.
	Code string `json:"code"`

	// Scope is the namespace visibility for names the code defines.
	// If empty, the executor's default scope is used.
	Scope runtime.Scope `json:"scope,omitempty"`

	// Timeout is the advisory time budget, checked after the call returns.
	// If zero, the executor's default timeout is used.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ExecutionResult contains the outcome of one execution.
type ExecutionResult struct {
	// Success is false whenever ErrorMessage is non-empty or any log line
	// was classified Warning or Error.
	Success bool `json:"success"`

	// Output holds the Info log lines, newline-joined.
	Output string `json:"output"`

	// Result holds the materialized return value, if any.
	Result string `json:"result"`

	// ErrorMessage holds Warning and Error log lines followed by the
	// relevant lines of an exception render.
	ErrorMessage string `json:"error_message"`

	// ErrorLine is the failing line parsed from the exception render.
	// Zero when unknown.
	ErrorLine int `json:"error_line,omitempty"`

	// LogMessages holds every log line tagged with its severity.
	LogMessages []string `json:"log_messages"`

	// ExecutionTimeMs is the measured execution time in milliseconds.
	ExecutionTimeMs int64 `json:"execution_time_ms"`
}

// Err returns nil for a successful result and a *CodeError otherwise.
func (r ExecutionResult) Err() error {
	if r.Success {
		return nil
	}
	msg := r.ErrorMessage
	if msg == "" {
		msg = "execution failed"
	}
	return &CodeError{Message: msg, Line: r.ErrorLine}
}
