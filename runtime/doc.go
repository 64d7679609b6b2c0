// Package runtime defines the boundary between scriptbridge and a host
// application's embedded scripting interpreter.
//
// A [Host] runs a [Command] (source text, an [ExecutionMode] and a [Scope])
// and reports a [CommandOutput]: the command-result string the interpreter
// produced plus every log line it emitted, tagged with a [LogType].
//
// # Execution Modes
//
//   - [ModeExecuteFile]: the code is run as if it were a file.
//   - [ModeExecuteStatement]: the code is a single statement; expression values
//     are echoed to the log.
//   - [ModeEvaluateStatement]: the code is a single expression; its rendering
//     becomes the command result.
//
// # Exceptions vs. Faults
//
// An exception raised by executed code is not a Go error. Hosts render the
// traceback into [CommandOutput].Result and return a nil error. Errors returned
// from [Host.Run] are reserved for faults of the host API itself (transport
// failures, a crashed interpreter process, a malformed response) and wrap
// [ErrHostFault].
//
// # Backends
//
// Concrete hosts live under runtime/backend:
//
//   - subprocess: an out-of-process interpreter driven by an embedded harness
//   - remote: an execution endpoint served from inside the host application
package runtime
