package code

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/scriptbridge/runtime"
)

// Executor is the entry point for running code against the host.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: cancellation is forwarded to the host; the timeout is advisory.
// - Errors: exceptions in executed code are reported in ExecutionResult with
// a nil error; empty input, unavailability, host faults and exceeded timeouts
// return errors matching the package sentinels.
// - Ownership: params are read-only; returned ExecutionResult is caller-owned.
type Executor interface {
	// ExecuteCode runs code in file-execution mode.
	ExecuteCode(ctx context.Context, params ExecuteParams) (ExecutionResult, error)

	// EvaluateExpression evaluates a single expression in the public scope;
	// Result holds the value's rendering.
	EvaluateExpression(ctx context.Context, expr string) (ExecutionResult, error)
}

// DefaultExecutor is the standard implementation of Executor.
type DefaultExecutor struct {
	cfg       Config
	telemetry *telemetry

	// mu serializes host access; hosts bind their interpreter to one thread.
	mu        sync.Mutex
	validated atomic.Bool
}

// NewDefaultExecutor creates a new DefaultExecutor with the given configuration.
// Returns ErrConfiguration if any required field is missing.
func NewDefaultExecutor(cfg Config) (*DefaultExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	tel, err := newTelemetry(cfg.TracerProvider, cfg.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return &DefaultExecutor{cfg: cfg, telemetry: tel}, nil
}

// ExecuteCode runs code in file-execution mode under the requested scope.
func (e *DefaultExecutor) ExecuteCode(ctx context.Context, params ExecuteParams) (ExecutionResult, error) {
	if strings.TrimSpace(params.Code) == "" {
		return ExecutionResult{}, fmt.Errorf("%w: code is empty", ErrEmptyInput)
	}
	if params.Scope == "" {
		params.Scope = e.cfg.DefaultScope
	}
	if params.Timeout == 0 {
		params.Timeout = e.cfg.DefaultTimeout
	}
	return e.run(ctx, "code.ExecuteCode", runtime.Command{
		Code:  params.Code,
		Mode:  runtime.ModeExecuteFile,
		Scope: params.Scope,
	}, params.Timeout)
}

// EvaluateExpression evaluates expr in the public scope.
func (e *DefaultExecutor) EvaluateExpression(ctx context.Context, expr string) (ExecutionResult, error) {
	if strings.TrimSpace(expr) == "" {
		return ExecutionResult{}, fmt.Errorf("%w: expression is empty", ErrEmptyInput)
	}
	return e.run(ctx, "code.EvaluateExpression", runtime.Command{
		Code:  expr,
		Mode:  runtime.ModeEvaluateStatement,
		Scope: runtime.ScopePublic,
	}, e.cfg.DefaultTimeout)
}

// ExecuteCodeSafe runs params like ExecuteCode. When validate is set, the code
// is first scanned against the deny-list and every match is logged as a
// warning. Execution proceeds regardless of matches.
func (e *DefaultExecutor) ExecuteCodeSafe(ctx context.Context, params ExecuteParams, validate bool) (ExecutionResult, error) {
	if validate {
		for _, m := range ScanUnsafe(params.Code) {
			e.cfg.Logger.Warn("potentially unsafe code",
				"rule", m.Rule,
				"line", m.Line,
				"text", m.Text)
		}
	}
	return e.ExecuteCode(ctx, params)
}

// IsAvailable reports whether the interpreter is loaded and initialized.
// A positive check sets the validated flag; every call checks again.
func (e *DefaultExecutor) IsAvailable(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok := e.available(ctx)
	if ok {
		e.validated.Store(true)
	}
	return ok, nil
}

// Validated reports whether an availability check has ever succeeded.
func (e *DefaultExecutor) Validated() bool {
	return e.validated.Load()
}

// GetRuntimeInfo returns the interpreter path and, when a trivial probe
// succeeds, its version.
func (e *DefaultExecutor) GetRuntimeInfo(ctx context.Context) (string, error) {
	if !e.available(ctx) {
		return "", fmt.Errorf("%w: %s host", ErrRuntimeUnavailable, e.cfg.Host.Kind())
	}
	path := e.cfg.Host.InterpreterPath()

	res, err := e.run(ctx, "code.GetRuntimeInfo", runtime.Command{
		Code:  "'.'.join(map(str, __import__('sys').version_info[:3]))",
		Mode:  runtime.ModeEvaluateStatement,
		Scope: runtime.ScopePrivate,
	}, 0)
	if err != nil || !res.Success {
		e.cfg.Logger.Warn("version probe failed", "error", err, "message", res.ErrorMessage)
		return path, nil
	}
	version := strings.Trim(strings.TrimSpace(res.Result), `'"`)
	if version == "" {
		return path, nil
	}
	return fmt.Sprintf("%s (Python %s)", path, version), nil
}

// HostKind returns the kind of the configured host.
func (e *DefaultExecutor) HostKind() runtime.HostKind {
	return e.cfg.Host.Kind()
}

func (e *DefaultExecutor) run(ctx context.Context, op string, cmd runtime.Command, timeout time.Duration) (res ExecutionResult, err error) {
	ctx, span := e.telemetry.start(ctx, op, cmd)
	var elapsed time.Duration
	defer func() { e.telemetry.finish(ctx, span, op, res, elapsed, err) }()

	if !e.available(ctx) {
		return ExecutionResult{}, fmt.Errorf("%w: %s host at %s",
			ErrRuntimeUnavailable, e.cfg.Host.Kind(), e.cfg.Host.InterpreterPath())
	}

	e.mu.Lock()
	start := time.Now()
	out, runErr := e.invoke(ctx, cmd)
	elapsed = time.Since(start)
	e.mu.Unlock()

	if runErr != nil {
		if errors.Is(runErr, runtime.ErrRuntimeUnavailable) {
			return ExecutionResult{}, fmt.Errorf("%w: %v", ErrRuntimeUnavailable, runErr)
		}
		e.cfg.Logger.Error("host call failed", "operation", op, "error", runErr)
		res = ExecutionResult{
			ErrorMessage:    runErr.Error(),
			LogMessages:     []string{},
			ExecutionTimeMs: elapsed.Milliseconds(),
		}
		return res, &CodeError{Message: "host call failed: " + runErr.Error(), Err: runErr}
	}

	res = convertOutput(out)
	res.ExecutionTimeMs = elapsed.Milliseconds()

	e.cfg.Logger.Info("executed",
		"operation", op,
		"mode", cmd.Mode,
		"scope", cmd.Scope,
		"success", res.Success,
		"duration_ms", res.ExecutionTimeMs)

	if timeout > 0 && elapsed > timeout {
		e.cfg.Logger.Warn("advisory timeout exceeded", "operation", op, "limit", timeout, "elapsed", elapsed)
		return res, &TimeoutError{Limit: timeout, Elapsed: elapsed}
	}
	return res, nil
}

// invoke calls the host, converting a panic into a host fault.
func (e *DefaultExecutor) invoke(ctx context.Context, cmd runtime.Command) (out runtime.CommandOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", runtime.ErrHostFault, r)
		}
	}()
	return e.cfg.Host.Run(ctx, cmd)
}

func (e *DefaultExecutor) available(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.cfg.Logger.Error("host availability check panicked", "panic", r)
			ok = false
		}
	}()
	return e.cfg.Host.Available(ctx)
}

var _ Executor = (*DefaultExecutor)(nil)
