// Package code provides the execution engine that runs caller-supplied code
// and expressions against a host's embedded interpreter.
//
// code sits on top of a [runtime.Host] and turns the raw command output a host
// reports (a command-result string plus severity-tagged log lines) into a
// typed [ExecutionResult].
//
// # Architecture
//
//   - [Executor]: the interface consumed by the discovery layer and the exec
//     facade, providing ExecuteCode and EvaluateExpression.
//
//   - [DefaultExecutor]: the standard implementation. It also offers
//     ExecuteCodeSafe, IsAvailable and GetRuntimeInfo.
//
// # Result Conversion
//
// Info log lines are joined into Output. Warning and Error lines are joined
// into ErrorMessage. The command-result string is an exception render when it
// contains "Error" or "Traceback"; its last non-empty line, followed by the
// preceding non-empty line when distinct, is appended to ErrorMessage.
// Otherwise it is the materialized return value in Result.
//
// # Failure Semantics
//
// An exception raised by the executed code is data: the call returns a
// result with Success false and a nil error. [ExecutionResult.Err] converts
// such a result into a [*CodeError]. Errors are returned for:
//
//   - Empty input: [ErrEmptyInput], checked before the host is touched
//   - A missing interpreter: [ErrRuntimeUnavailable]
//   - Host faults and host panics: [ErrRuntimeError]
//   - Advisory timeouts: [ErrTimeoutExceeded] via [*TimeoutError]
//
// # Advisory Timeout
//
// A host call cannot be preempted. The timeout is compared against the
// measured duration after the call returns, and the populated result is
// returned alongside the timeout error.
package code
