// Package remote provides a host that talks to an execution endpoint served
// from inside the host application, typically an editor plugin listening on
// localhost.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/scriptbridge/runtime"
	"github.com/jonwraymond/scriptbridge/runtime/backend/shared"
)

// Errors for remote backend operations.
var (
	// ErrConnectionFailed is returned when the endpoint cannot be reached.
	ErrConnectionFailed = errors.New("connection to remote host failed")

	// ErrRemoteExecutionFailed is returned when the endpoint reports a failure
	// of its own, as opposed to an exception in the executed code.
	ErrRemoteExecutionFailed = errors.New("remote execution failed")

	// ErrClientNotConfigured is returned when no remote client is configured.
	ErrClientNotConfigured = errors.New("remote client not configured")
)

// Logger is the interface for logging.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// RemoteClient executes remote requests.
//
// Contract:
// - Concurrency: Implementations must be safe for concurrent use.
// - Context: Execute and Status must honor cancellation and deadlines.
type RemoteClient interface {
	Execute(ctx context.Context, req RemoteRequest) (RemoteResponse, error)
	Status(ctx context.Context) (StatusResponse, error)
}

// EndpointProvider optionally exposes the configured endpoint for diagnostics.
type EndpointProvider interface {
	Endpoint() string
}

// Config configures a remote backend.
type Config struct {
	// Client executes remote requests.
	// Required. NewHTTPClient provides the standard implementation.
	Client RemoteClient

	// StatusTimeout bounds the availability check.
	// Default: 2s
	StatusTimeout time.Duration

	// Logger is an optional logger for backend events.
	Logger Logger
}

// Backend runs commands through a remote execution endpoint.
type Backend struct {
	client        RemoteClient
	statusTimeout time.Duration
	logger        Logger
}

// New creates a new remote backend with the given configuration.
func New(cfg Config) *Backend {
	statusTimeout := cfg.StatusTimeout
	if statusTimeout == 0 {
		statusTimeout = 2 * time.Second
	}

	return &Backend{
		client:        cfg.Client,
		statusTimeout: statusTimeout,
		logger:        cfg.Logger,
	}
}

// Kind returns the backend kind identifier.
func (b *Backend) Kind() runtime.HostKind {
	return runtime.HostRemote
}

// Available asks the endpoint whether its interpreter is loaded and
// initialized.
func (b *Backend) Available(ctx context.Context) bool {
	status, err := b.status(ctx)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("remote status check failed", "error", err)
		}
		return false
	}
	return status.Available && status.Initialized
}

// InterpreterPath reports the interpreter path published by the endpoint, or
// the endpoint itself when the status call fails.
func (b *Backend) InterpreterPath() string {
	status, err := b.status(context.Background())
	if err == nil && status.InterpreterPath != "" {
		return status.InterpreterPath
	}
	if provider, ok := b.client.(EndpointProvider); ok {
		return provider.Endpoint()
	}
	return ""
}

func (b *Backend) status(ctx context.Context) (StatusResponse, error) {
	if b.client == nil {
		return StatusResponse{}, ErrClientNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, b.statusTimeout)
	defer cancel()
	return b.client.Status(ctx)
}

// Run sends a command to the remote endpoint.
func (b *Backend) Run(ctx context.Context, cmd runtime.Command) (runtime.CommandOutput, error) {
	if err := cmd.Validate(); err != nil {
		return runtime.CommandOutput{}, err
	}
	if b.client == nil {
		return runtime.CommandOutput{}, fmt.Errorf("%w: %w", runtime.ErrHostFault, ErrClientNotConfigured)
	}

	start := time.Now()
	response, err := b.client.Execute(ctx, RemoteRequest{
		Code:  cmd.Code,
		Mode:  string(cmd.Mode),
		Scope: string(cmd.Scope),
	})
	if err != nil {
		return runtime.CommandOutput{Duration: time.Since(start)}, fmt.Errorf("%w: %w", runtime.ErrHostFault, err)
	}
	if response.Error != nil {
		if response.Error.Code == ErrorCodeUnavailable {
			return runtime.CommandOutput{Duration: time.Since(start)},
				fmt.Errorf("%w: %s", runtime.ErrRuntimeUnavailable, response.Error.Message)
		}
		return runtime.CommandOutput{Duration: time.Since(start)},
			fmt.Errorf("%w: %w: %s", runtime.ErrHostFault, ErrRemoteExecutionFailed, response.Error.Message)
	}

	out := mapRemoteResult(response)
	if out.Duration == 0 {
		out.Duration = time.Since(start)
	}
	return out, nil
}

var _ runtime.Host = (*Backend)(nil)

// ErrorCodeUnavailable is the endpoint error code for an interpreter that is
// not loaded.
const ErrorCodeUnavailable = "RUNTIME_UNAVAILABLE"

// RemoteRequest is the wire request to the execution endpoint.
type RemoteRequest struct {
	Code  string `json:"code"`
	Mode  string `json:"mode"`
	Scope string `json:"scope"`
}

// RemoteResponse is the wire response from the execution endpoint.
type RemoteResponse struct {
	CommandResult  string             `json:"command_result"`
	LogOutput      []runtime.LogEntry `json:"log_output,omitempty"`
	Stdout         string             `json:"stdout,omitempty"`
	Stderr         string             `json:"stderr,omitempty"`
	DurationMillis int64              `json:"duration_ms,omitempty"`
	Error          *RemoteError       `json:"error,omitempty"`
}

// RemoteError describes a failure of the endpoint itself.
type RemoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse describes the endpoint's interpreter.
type StatusResponse struct {
	Available       bool   `json:"available"`
	Initialized     bool   `json:"initialized"`
	InterpreterPath string `json:"interpreter_path,omitempty"`
	Version         string `json:"version,omitempty"`
}

func mapRemoteResult(payload RemoteResponse) runtime.CommandOutput {
	out := runtime.CommandOutput{
		Result:   payload.CommandResult,
		Duration: time.Duration(payload.DurationMillis) * time.Millisecond,
	}
	if len(payload.LogOutput) > 0 {
		out.Log = append(out.Log, payload.LogOutput...)
		return out
	}
	out.Log = append(out.Log, shared.SplitLog(payload.Stdout, runtime.LogInfo)...)
	out.Log = append(out.Log, shared.SplitLog(payload.Stderr, runtime.LogError)...)
	return out
}
