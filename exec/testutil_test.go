package exec

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/scriptbridge/code"
	"github.com/jonwraymond/scriptbridge/discovery"
	"github.com/jonwraymond/scriptbridge/runtime"
	"github.com/jonwraymond/scriptbridge/sourcefs"
)

// mockEngine implements Engine with call tracking.
type mockEngine struct {
	mu sync.Mutex

	// executeFunc answers ExecuteCode. Default: success with no output.
	executeFunc func(params code.ExecuteParams) (code.ExecutionResult, error)
	evaluateFn  func(expr string) (code.ExecutionResult, error)
	available   bool
	info        string

	executeCalls  []code.ExecuteParams
	evaluateCalls []string

	// safeCalls holds the validate flag of every ExecuteCodeSafe call.
	safeCalls []bool
}

func (m *mockEngine) ExecuteCode(_ context.Context, params code.ExecuteParams) (code.ExecutionResult, error) {
	m.mu.Lock()
	m.executeCalls = append(m.executeCalls, params)
	fn := m.executeFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(params)
	}
	return code.ExecutionResult{Success: true, LogMessages: []string{}}, nil
}

func (m *mockEngine) ExecuteCodeSafe(ctx context.Context, params code.ExecuteParams, validate bool) (code.ExecutionResult, error) {
	m.mu.Lock()
	m.safeCalls = append(m.safeCalls, validate)
	m.mu.Unlock()
	return m.ExecuteCode(ctx, params)
}

func (m *mockEngine) EvaluateExpression(_ context.Context, expr string) (code.ExecutionResult, error) {
	m.mu.Lock()
	m.evaluateCalls = append(m.evaluateCalls, expr)
	fn := m.evaluateFn
	m.mu.Unlock()
	if fn != nil {
		return fn(expr)
	}
	return code.ExecutionResult{Success: true, Result: expr, LogMessages: []string{}}, nil
}

func (m *mockEngine) IsAvailable(context.Context) (bool, error) {
	return m.available, nil
}

func (m *mockEngine) Validated() bool {
	return m.available
}

func (m *mockEngine) GetRuntimeInfo(context.Context) (string, error) {
	return m.info, nil
}

func (m *mockEngine) HostKind() runtime.HostKind {
	return runtime.HostSubprocess
}

func (m *mockEngine) executeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.executeCalls)
}

// probeOutput answers discovery probes with a fixed object model.
func probeOutput(params code.ExecuteParams) (code.ExecutionResult, error) {
	switch {
	case strings.Contains(params.Code, "NoSuchClass"):
		return code.ExecutionResult{Success: true, Output: `{"error": "class not found: NoSuchClass"}`}, nil
	case strings.Contains(params.Code, `_params["name"]`):
		return code.ExecutionResult{Success: true, Output: `{"name": "FloatProperty", "base_classes": ["Property"], "methods": []}`}, nil
	case strings.Contains(params.Code, `_params["filter"]`):
		return code.ExecutionResult{Success: true, Output: `{"name": "unreal", "classes": ["Actor"], "functions": ["log"], "constants": []}`}, nil
	}
	return code.ExecutionResult{Success: true, Output: `{"subsystems": ["LevelEditorSubsystem"]}`}, nil
}

// newTestExec builds an Exec over a mock engine. Discovery probes run on the
// same engine.
func newTestExec(t *testing.T, engine *mockEngine, mutate func(*Options)) *Exec {
	t.Helper()
	disc, err := discovery.New(discovery.Config{Executor: engine})
	require.NoError(t, err)
	opts := Options{Engine: engine, Discovery: disc}
	if mutate != nil {
		mutate(&opts)
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func newTestSource(t *testing.T) *sourcefs.FS {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"Source/Bridge.cpp": "#include \"Bridge.h\"\n// TODO: split\nvoid Init() {}\n",
		"Source/Bridge.h":   "#pragma once\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	fs, err := sourcefs.New(sourcefs.Config{Root: root})
	require.NoError(t, err)
	return fs
}
