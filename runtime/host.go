package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HostKind identifies a host backend implementation.
type HostKind string

const (
	// HostSubprocess drives an interpreter in a child process.
	HostSubprocess HostKind = "subprocess"

	// HostRemote talks to an execution endpoint inside the host application.
	HostRemote HostKind = "remote"
)

// ExecutionMode selects how the interpreter compiles a command.
type ExecutionMode string

const (
	ModeExecuteFile       ExecutionMode = "ExecuteFile"
	ModeExecuteStatement  ExecutionMode = "ExecuteStatement"
	ModeEvaluateStatement ExecutionMode = "EvaluateStatement"
)

// IsValid reports whether m is a known execution mode.
func (m ExecutionMode) IsValid() bool {
	switch m {
	case ModeExecuteFile, ModeExecuteStatement, ModeEvaluateStatement:
		return true
	}
	return false
}

// Scope is the visibility level under which names defined by executed code
// register in the host's namespace.
type Scope string

const (
	// ScopePrivate runs the code in a fresh namespace.
	ScopePrivate Scope = "Private"

	// ScopePublic runs the code in the host's shared namespace, so names it
	// defines are visible to later commands.
	ScopePublic Scope = "Public"
)

// IsValid reports whether s is a known scope.
func (s Scope) IsValid() bool {
	return s == ScopePrivate || s == ScopePublic
}

// ParseScope converts a case-insensitive scope name. An empty name yields
// ScopePrivate.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "private":
		return ScopePrivate, nil
	case "public":
		return ScopePublic, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidCommand, name)
}

// LogType is the severity of a captured log line.
type LogType string

const (
	LogInfo    LogType = "Info"
	LogWarning LogType = "Warning"
	LogError   LogType = "Error"
)

// LogEntry is one line of interpreter output.
type LogEntry struct {
	Type   LogType `json:"type"`
	Output string  `json:"output"`
}

// Command is a unit of work for a Host.
type Command struct {
	// Code is the source text to run.
	Code string

	// Mode selects file, statement or expression compilation.
	// Default: ModeExecuteFile
	Mode ExecutionMode

	// Scope selects the namespace the code runs in.
	// Default: ScopePrivate
	Scope Scope
}

// Validate checks the command and fills in defaults for empty fields.
func (c *Command) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidCommand)
	}
	if c.Mode == "" {
		c.Mode = ModeExecuteFile
	}
	if !c.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidCommand, c.Mode)
	}
	if c.Scope == "" {
		c.Scope = ScopePrivate
	}
	if !c.Scope.IsValid() {
		return fmt.Errorf("%w: unknown scope %q", ErrInvalidCommand, c.Scope)
	}
	return nil
}

// CommandOutput is what the interpreter reported for one command.
type CommandOutput struct {
	// Result is the command-result string. In evaluate mode it holds the
	// rendered value; when the code raised, it holds the exception render.
	Result string `json:"command_result"`

	// Log holds every captured output line in emission order.
	Log []LogEntry `json:"log_output"`

	// Duration is the host-side execution time, when the host reports one.
	Duration time.Duration `json:"-"`
}

// Host runs commands against an embedded interpreter.
//
// Contract:
//   - Concurrency: callers serialize access; hosts need not be safe for
//     concurrent Run calls.
//   - Context: Run honors cancellation where the transport allows it. Hosts
//     never impose their own execution deadline.
//   - Errors: exceptions inside executed code are reported through
//     CommandOutput, not as errors. Returned errors wrap ErrHostFault or
//     ErrRuntimeUnavailable.
type Host interface {
	// Kind returns the backend kind.
	Kind() HostKind

	// Available reports whether the interpreter is loaded and initialized.
	Available(ctx context.Context) bool

	// InterpreterPath returns the interpreter location for diagnostics.
	InterpreterPath() string

	// Run executes a command and returns the captured output.
	Run(ctx context.Context, cmd Command) (CommandOutput, error)
}
