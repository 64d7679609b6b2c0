package exec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jonwraymond/tooldiscovery/tooldoc"

	"github.com/jonwraymond/scriptbridge/code"
	"github.com/jonwraymond/scriptbridge/runtime"
)

// Operation names.
const (
	OpExecuteCode          = "execute_code"
	OpEvaluateExpression   = "evaluate_expression"
	OpDiscoverModule       = "discover_module"
	OpDiscoverClass        = "discover_class"
	OpDiscoverFunction     = "discover_function"
	OpListEditorSubsystems = "list_editor_subsystems"
	OpSearchAPI            = "search_api"
	OpReadSourceFile       = "read_source_file"
	OpSearchSourceFiles    = "search_source_files"
	OpListSourceFiles      = "list_source_files"
	OpRuntimeInfo          = "runtime_info"
)

// defaultContextLines is used when search_source_files omits context_lines.
const defaultContextLines = 2

// maxTimeoutMs is the largest timeout_ms that fits a time.Duration.
const maxTimeoutMs = int64(math.MaxInt64 / time.Millisecond)

type handlerFunc func(ctx context.Context, raw json.RawMessage) (any, error)

// operation is one catalog entry.
type operation struct {
	name        string
	description string
	tags        []string
	schema      map[string]any
	doc         tooldoc.DocEntry
	handle      handlerFunc
}

type executeCodeInput struct {
	Code      string `json:"code"`
	Scope     string `json:"scope"`
	TimeoutMs int64  `json:"timeout_ms"`
	Validate  bool   `json:"validate"`
}

type evaluateInput struct {
	Expression string `json:"expression"`
}

type discoverModuleInput struct {
	MaxDepth int    `json:"max_depth"`
	Filter   string `json:"filter"`
}

type discoverClassInput struct {
	ClassName string `json:"class_name"`
}

type discoverFunctionInput struct {
	FunctionPath string `json:"function_path"`
}

type searchAPIInput struct {
	Pattern string `json:"pattern"`
	Kind    string `json:"kind"`
}

type readSourceInput struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	MaxLines  int    `json:"max_lines"`
}

type searchSourceInput struct {
	Pattern      string `json:"pattern"`
	FilePatterns string `json:"file_patterns"`
	ContextLines *int   `json:"context_lines"`
}

type listSourceInput struct {
	Subdirectory string `json:"subdirectory"`
	Pattern      string `json:"pattern"`
}

// operations returns the catalog in registration order.
func (e *Exec) operations() []operation {
	return []operation{
		{
			name:        OpExecuteCode,
			description: "Execute Python code inside the editor's embedded interpreter and return its captured output",
			tags:        []string{"execute", "python", "code"},
			schema: object([]string{"code"}, map[string]any{
				"code":       prop("string", "Python source to run in file-execution mode"),
				"scope":      enumProp("Namespace visibility for names the code defines", "Private", "Public"),
				"timeout_ms": prop("integer", "Advisory time budget in milliseconds, checked after the call returns"),
				"validate":   prop("boolean", "Scan the code against the unsafe-pattern deny-list and log matches"),
			}),
			doc: tooldoc.DocEntry{
				Summary: "Runs code synchronously; exceptions are reported in error_message with success=false",
				Notes:   "The timeout is advisory: a call that overruns still returns its result together with TIMEOUT_EXCEEDED.",
				Examples: []tooldoc.ToolExample{
					{Title: "Print a value", Args: map[string]any{"code": "print(1 + 1)"}},
				},
			},
			handle: e.executeCode,
		},
		{
			name:        OpEvaluateExpression,
			description: "Evaluate a single Python expression in the public scope and return its value",
			tags:        []string{"evaluate", "python", "expression"},
			schema: object([]string{"expression"}, map[string]any{
				"expression": prop("string", "Expression to evaluate"),
			}),
			doc: tooldoc.DocEntry{
				Summary:  "Evaluates an expression; the rendered value is returned in result",
				Examples: []tooldoc.ToolExample{{Title: "Arithmetic", Args: map[string]any{"expression": "6 * 7"}, ResultHint: `"42"`}},
			},
			handle: e.evaluateExpression,
		},
		{
			name:        OpDiscoverModule,
			description: "List the classes, functions and constants of the editor scripting module",
			tags:        []string{"discover", "introspection", "module"},
			schema: object(nil, map[string]any{
				"max_depth": prop("integer", "Submodule depth to walk; values below 1 mean 1"),
				"filter":    prop("string", "Case-insensitive substring member names must contain"),
			}),
			doc:    tooldoc.DocEntry{Summary: "Module members; results are cached per (max_depth, filter)"},
			handle: e.discoverModule,
		},
		{
			name:        OpDiscoverClass,
			description: "Describe a class: base classes, methods with signatures, and properties",
			tags:        []string{"discover", "introspection", "class"},
			schema: object([]string{"class_name"}, map[string]any{
				"class_name": prop("string", "Class name, optionally prefixed with the module name"),
			}),
			doc: tooldoc.DocEntry{
				Summary:  "Class description; CLASS_NOT_FOUND when the name does not resolve",
				Examples: []tooldoc.ToolExample{{Title: "Float property", Args: map[string]any{"class_name": "FloatProperty"}}},
			},
			handle: e.discoverClass,
		},
		{
			name:        OpDiscoverFunction,
			description: "Describe a function or method: parameters, annotated types and return type",
			tags:        []string{"discover", "introspection", "function"},
			schema: object([]string{"function_path"}, map[string]any{
				"function_path": prop("string", "Function name or Class.method path"),
			}),
			doc:    tooldoc.DocEntry{Summary: "Function description; unavailable signatures degrade to a placeholder"},
			handle: e.discoverFunction,
		},
		{
			name:        OpListEditorSubsystems,
			description: "List the editor subsystem classes exposed to scripting",
			tags:        []string{"discover", "editor", "subsystem"},
			schema:      object(nil, map[string]any{}),
			doc:         tooldoc.DocEntry{Summary: "Classes whose names contain both Editor and Subsystem; never cached"},
			handle:      e.listEditorSubsystems,
		},
		{
			name:        OpSearchAPI,
			description: "Search the scripting API for classes and functions by name",
			tags:        []string{"search", "api", "discover"},
			schema: object(nil, map[string]any{
				"pattern": prop("string", "Case-insensitive substring to match"),
				"kind":    enumProp("Which members to return", "all", "class", "function"),
			}),
			doc:    tooldoc.DocEntry{Summary: `Labeled matches such as "Class: Actor" and "Function: log"`},
			handle: e.searchAPI,
		},
		{
			name:        OpReadSourceFile,
			description: "Read a line-numbered window of a file in the plugin source tree",
			tags:        []string{"source", "read", "file"},
			schema: object([]string{"path"}, map[string]any{
				"path":       prop("string", "Path relative to the source root, or an absolute path under an allowed prefix"),
				"start_line": prop("integer", "First line to return, 1-based"),
				"max_lines":  prop("integer", "Maximum lines to return"),
			}),
			doc:    tooldoc.DocEntry{Summary: "Paths with .., ~ or disallowed absolute prefixes fail INVALID_PATH"},
			handle: e.readSourceFile,
		},
		{
			name:        OpSearchSourceFiles,
			description: "Search the plugin source tree for a literal string with surrounding context",
			tags:        []string{"source", "search", "grep"},
			schema: object([]string{"pattern"}, map[string]any{
				"pattern":       prop("string", "Literal text to find"),
				"file_patterns": prop("string", "Comma-separated globs such as *.cpp,*.h; empty means all files"),
				"context_lines": prop("integer", "Lines of context before and after each match"),
			}),
			doc: tooldoc.DocEntry{
				Summary:  "Literal substring search, not regular expressions",
				Examples: []tooldoc.ToolExample{{Title: "Find TODOs", Args: map[string]any{"pattern": "TODO", "file_patterns": "*.cpp,*.h", "context_lines": 2}}},
			},
			handle: e.searchSourceFiles,
		},
		{
			name:        OpListSourceFiles,
			description: "List files in the plugin source tree",
			tags:        []string{"source", "list", "file"},
			schema: object(nil, map[string]any{
				"subdirectory": prop("string", "Directory to list, relative to the source root"),
				"pattern":      prop("string", "Comma-separated globs; patterns with a slash match the relative path"),
			}),
			doc:    tooldoc.DocEntry{Summary: "Sorted, slash-separated paths; hidden directories are skipped"},
			handle: e.listSourceFiles,
		},
		{
			name:        OpRuntimeInfo,
			description: "Report interpreter availability, path and version",
			tags:        []string{"runtime", "status", "version"},
			schema:      object(nil, map[string]any{}),
			doc:         tooldoc.DocEntry{Summary: "Checks availability on every call"},
			handle:      e.runtimeInfo,
		},
	}
}

func (e *Exec) executeCode(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[executeCodeInput](raw)
	if err != nil {
		return nil, err
	}
	scope := runtime.Scope("")
	if in.Scope != "" {
		if scope, err = runtime.ParseScope(in.Scope); err != nil {
			return nil, err
		}
	}
	if in.TimeoutMs < 0 || in.TimeoutMs > maxTimeoutMs {
		return nil, fmt.Errorf("%w: timeout_ms must be between 0 and %d", ErrInvalidInput, maxTimeoutMs)
	}
	res, err := e.engine.ExecuteCodeSafe(ctx, code.ExecuteParams{
		Code:    in.Code,
		Scope:   scope,
		Timeout: time.Duration(in.TimeoutMs) * time.Millisecond,
	}, in.Validate || e.opts.WarnUnsafe)
	return executionValue(res, err)
}

func (e *Exec) evaluateExpression(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[evaluateInput](raw)
	if err != nil {
		return nil, err
	}
	return executionValue(e.engine.EvaluateExpression(ctx, in.Expression))
}

// executionValue keeps the result alongside errors that still carry one.
func executionValue(res code.ExecutionResult, err error) (any, error) {
	if err == nil || errors.Is(err, code.ErrTimeoutExceeded) || errors.Is(err, code.ErrRuntimeError) {
		return res, err
	}
	return nil, err
}

func (e *Exec) discoverModule(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[discoverModuleInput](raw)
	if err != nil {
		return nil, err
	}
	return nilOnError(e.discovery.DiscoverModule(ctx, in.MaxDepth, in.Filter))
}

func (e *Exec) discoverClass(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[discoverClassInput](raw)
	if err != nil {
		return nil, err
	}
	return nilOnError(e.discovery.DiscoverClass(ctx, in.ClassName))
}

func (e *Exec) discoverFunction(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[discoverFunctionInput](raw)
	if err != nil {
		return nil, err
	}
	return nilOnError(e.discovery.DiscoverFunction(ctx, in.FunctionPath))
}

func (e *Exec) listEditorSubsystems(ctx context.Context, raw json.RawMessage) (any, error) {
	if _, err := decodeInput[struct{}](raw); err != nil {
		return nil, err
	}
	names, err := e.discovery.ListEditorSubsystems(ctx)
	if err != nil {
		return nil, err
	}
	return listing(names), nil
}

func (e *Exec) searchAPI(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[searchAPIInput](raw)
	if err != nil {
		return nil, err
	}
	labels, err := e.discovery.SearchAPI(ctx, in.Pattern, in.Kind)
	if err != nil {
		return nil, err
	}
	return listing(labels), nil
}

func (e *Exec) readSourceFile(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[readSourceInput](raw)
	if err != nil {
		return nil, err
	}
	if e.source == nil {
		return nil, ErrSourceDisabled
	}
	return nilOnError(e.source.ReadSourceFile(ctx, in.Path, in.StartLine, in.MaxLines))
}

func (e *Exec) searchSourceFiles(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[searchSourceInput](raw)
	if err != nil {
		return nil, err
	}
	if e.source == nil {
		return nil, ErrSourceDisabled
	}
	contextLines := defaultContextLines
	if in.ContextLines != nil {
		contextLines = *in.ContextLines
	}
	results, err := e.source.SearchSourceFiles(ctx, in.Pattern, in.FilePatterns, contextLines)
	if err != nil {
		return nil, err
	}
	return listing(results), nil
}

func (e *Exec) listSourceFiles(ctx context.Context, raw json.RawMessage) (any, error) {
	in, err := decodeInput[listSourceInput](raw)
	if err != nil {
		return nil, err
	}
	if e.source == nil {
		return nil, ErrSourceDisabled
	}
	files, err := e.source.ListSourceFiles(ctx, in.Subdirectory, in.Pattern)
	if err != nil {
		return nil, err
	}
	return listing(files), nil
}

func (e *Exec) runtimeInfo(ctx context.Context, raw json.RawMessage) (any, error) {
	if _, err := decodeInput[struct{}](raw); err != nil {
		return nil, err
	}
	available, err := e.engine.IsAvailable(ctx)
	if err != nil {
		return nil, err
	}
	info := RuntimeInfo{
		Host:      string(e.engine.HostKind()),
		Available: available,
		Validated: e.engine.Validated(),
	}
	if available {
		if info.Info, err = e.engine.GetRuntimeInfo(ctx); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func nilOnError[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

// decodeInput strictly decodes raw operation arguments. Empty input decodes
// to the zero value.
func decodeInput[T any](raw json.RawMessage) (T, error) {
	var in T
	if len(bytes.TrimSpace(raw)) == 0 {
		return in, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return in, nil
}

func object(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		schema["required"] = req
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return map[string]any{"type": "string", "description": description, "enum": enum}
}
