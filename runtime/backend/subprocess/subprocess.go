// Package subprocess provides a host that drives a Python interpreter in a
// child process. Every command starts a fresh interpreter running an embedded
// harness, so public-scope names do not persist between commands.
package subprocess

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/scriptbridge/runtime"
	"github.com/jonwraymond/scriptbridge/runtime/backend/shared"
)

//go:embed harness.py
var harnessSource string

// ErrEnvelopeMissing is returned when the interpreter exits without printing
// the result envelope.
var ErrEnvelopeMissing = errors.New("result envelope missing")

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

// Config configures a subprocess host.
type Config struct {
	// Interpreter is the interpreter binary name or path.
	// Default: python3 (uses PATH)
	Interpreter string

	// WorkDir is the working directory for the interpreter.
	// Default: the current process directory
	WorkDir string

	// Env replaces the inherited environment when non-nil.
	Env []string

	// PythonPath entries are prepended to PYTHONPATH, typically to make a
	// stub of the host module importable.
	PythonPath []string

	// Logger is an optional logger for backend events.
	Logger Logger
}

// Backend runs commands in a child interpreter process.
type Backend struct {
	interpreter string
	workDir     string
	env         []string
	pythonPath  []string
	logger      Logger
}

// New creates a subprocess host with the given configuration.
func New(cfg Config) *Backend {
	interpreter := cfg.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	return &Backend{
		interpreter: interpreter,
		workDir:     cfg.WorkDir,
		env:         cfg.Env,
		pythonPath:  cfg.PythonPath,
		logger:      cfg.Logger,
	}
}

// Kind returns the backend kind identifier.
func (b *Backend) Kind() runtime.HostKind {
	return runtime.HostSubprocess
}

// InterpreterPath returns the resolved interpreter path, or the configured
// name when it cannot be resolved.
func (b *Backend) InterpreterPath() string {
	if path, err := exec.LookPath(b.interpreter); err == nil {
		return path
	}
	return b.interpreter
}

// Available reports whether the interpreter binary can be found.
func (b *Backend) Available(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	_, err := exec.LookPath(b.interpreter)
	return err == nil
}

// harnessRequest is the JSON document the harness reads from stdin.
type harnessRequest struct {
	Marker string `json:"marker"`
	Code   string `json:"code"`
	Mode   string `json:"mode"`
	Scope  string `json:"scope"`
}

// envelope is the JSON document the harness prints after the marker.
type envelope struct {
	CommandResult string             `json:"command_result"`
	LogOutput     []runtime.LogEntry `json:"log_output"`
}

// Run executes a command in a fresh interpreter process.
func (b *Backend) Run(ctx context.Context, cmd runtime.Command) (runtime.CommandOutput, error) {
	if err := cmd.Validate(); err != nil {
		return runtime.CommandOutput{}, err
	}
	path, err := exec.LookPath(b.interpreter)
	if err != nil {
		return runtime.CommandOutput{}, fmt.Errorf("%w: %v", runtime.ErrRuntimeUnavailable, err)
	}

	marker := "@@scriptbridge:" + uuid.NewString() + "@@"
	stdin, err := json.Marshal(harnessRequest{
		Marker: marker,
		Code:   cmd.Code,
		Mode:   string(cmd.Mode),
		Scope:  string(cmd.Scope),
	})
	if err != nil {
		return runtime.CommandOutput{}, fmt.Errorf("%w: encoding request: %v", runtime.ErrHostFault, err)
	}

	proc := exec.CommandContext(ctx, path, "-c", harnessSource)
	if b.workDir != "" {
		proc.Dir = b.workDir
	}
	proc.Env = b.environment()
	proc.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	if b.logger != nil {
		b.logger.Info("starting interpreter",
			"interpreter", path,
			"mode", cmd.Mode,
			"scope", cmd.Scope)
	}

	start := time.Now()
	runErr := proc.Run()
	duration := time.Since(start)

	payload, rest, found := shared.ExtractEnvelope(stdout.String(), marker)
	if !found {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return runtime.CommandOutput{Duration: duration}, fmt.Errorf("%w: %w", runtime.ErrHostFault, ctxErr)
		}
		return runtime.CommandOutput{Duration: duration}, fmt.Errorf("%w: %w: %s",
			runtime.ErrHostFault, ErrEnvelopeMissing, describeExit(runErr, stderr.String()))
	}

	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return runtime.CommandOutput{Duration: duration}, fmt.Errorf("%w: decoding envelope: %v", runtime.ErrHostFault, err)
	}

	if runErr != nil && b.logger != nil {
		b.logger.Warn("interpreter exited abnormally after reporting", "error", runErr)
	}

	out := runtime.CommandOutput{
		Result:   env.CommandResult,
		Duration: duration,
	}
	out.Log = append(out.Log, shared.SplitLog(rest, runtime.LogInfo)...)
	out.Log = append(out.Log, env.LogOutput...)
	out.Log = append(out.Log, shared.SplitLog(stderr.String(), runtime.LogError)...)
	return out, nil
}

var _ runtime.Host = (*Backend)(nil)

func (b *Backend) environment() []string {
	env := b.env
	if env == nil {
		env = os.Environ()
	}
	env = append([]string(nil), env...)
	env = append(env, "PYTHONIOENCODING=utf-8", "PYTHONDONTWRITEBYTECODE=1")
	if len(b.pythonPath) == 0 {
		return env
	}

	entries := append([]string(nil), b.pythonPath...)
	for i, kv := range env {
		if existing, ok := strings.CutPrefix(kv, "PYTHONPATH="); ok {
			if existing != "" {
				entries = append(entries, existing)
			}
			env = append(env[:i], env[i+1:]...)
			break
		}
	}
	return append(env, "PYTHONPATH="+strings.Join(entries, string(os.PathListSeparator)))
}

func describeExit(runErr error, stderr string) string {
	stderr = strings.TrimSpace(stderr)
	var exitErr *exec.ExitError
	switch {
	case errors.As(runErr, &exitErr) && stderr != "":
		return fmt.Sprintf("exit code %d: %s", exitErr.ExitCode(), lastLine(stderr))
	case runErr != nil:
		return runErr.Error()
	case stderr != "":
		return lastLine(stderr)
	}
	return "no output"
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
