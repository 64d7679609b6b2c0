package discovery

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/jonwraymond/scriptbridge/code"
)

// spyExecutor implements code.Executor and records every probe it runs.
type spyExecutor struct {
	mu sync.Mutex

	// respond builds the result for a probe from its decoded parameters.
	respond func(params map[string]any) (code.ExecutionResult, error)

	calls []code.ExecuteParams
}

func (s *spyExecutor) ExecuteCode(_ context.Context, params code.ExecuteParams) (code.ExecutionResult, error) {
	s.mu.Lock()
	s.calls = append(s.calls, params)
	respond := s.respond
	s.mu.Unlock()
	return respond(probeParams(params.Code))
}

func (s *spyExecutor) EvaluateExpression(_ context.Context, _ string) (code.ExecutionResult, error) {
	return code.ExecutionResult{}, nil
}

func (s *spyExecutor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

var _ code.Executor = (*spyExecutor)(nil)

// probeParams recovers the parameter document a generated probe decodes.
func probeParams(script string) map[string]any {
	const marker = "_params = json.loads("
	start := strings.Index(script, marker)
	if start < 0 {
		return nil
	}
	rest := script[start+len(marker):]
	end := strings.Index(rest, ")\n")
	if end < 0 {
		return nil
	}
	var doc string
	if err := json.Unmarshal([]byte(rest[:end]), &doc); err != nil {
		return nil
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(doc), &params); err != nil {
		return nil
	}
	return params
}

// probeKind infers which probe produced params.
func probeKind(params map[string]any) Probe {
	switch {
	case params["depth"] != nil:
		return ProbeModule
	case params["name"] != nil:
		return ProbeClass
	case params["path"] != nil:
		return ProbeFunction
	}
	return ProbeSubsystems
}

func printed(payload any) code.ExecutionResult {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return code.ExecutionResult{Success: true, Output: string(data)}
}

// fakeRuntime answers probes from a fixed object model.
func fakeRuntime(params map[string]any) (code.ExecutionResult, error) {
	switch probeKind(params) {
	case ProbeModule:
		return printed(map[string]any{
			"name":          "unreal",
			"classes":       []string{"Actor", "EditorActorSubsystem", "FloatProperty"},
			"functions":     []string{"log", "log_warning"},
			"constants":     []string{"ENGINE_VERSION"},
			"total_members": 6,
		}), nil
	case ProbeClass:
		switch params["name"] {
		case "FloatProperty":
			return printed(map[string]any{
				"name":         "FloatProperty",
				"full_path":    "unreal.FloatProperty",
				"base_classes": []string{"Property", "Field", "_WrapperBase", "object"},
				"methods":      []any{},
				"properties":   []string{"default_value"},
			}), nil
		case "Actor":
			return printed(map[string]any{
				"name":         "Actor",
				"full_path":    "unreal.Actor",
				"base_classes": []string{"Object", "object"},
				"methods": []map[string]any{
					{"name": "get_actor_label", "signature": "(self) -> str", "parameters": []string{}, "return_type": "str", "is_method": true},
					{"name": "native_thing", "signature": "(...)"},
				},
			}), nil
		}
		return printed(map[string]any{"error": "class not found: " + params["name"].(string)}), nil
	case ProbeFunction:
		if params["path"] == "log" {
			return printed(map[string]any{
				"name":        "log",
				"signature":   "(message: str) -> None",
				"parameters":  []string{"message"},
				"param_types": []string{"str"},
				"return_type": "None",
			}), nil
		}
		return printed(map[string]any{"error": "function not found: " + params["path"].(string)}), nil
	}
	return printed(map[string]any{"subsystems": []string{"EditorActorSubsystem", "LevelEditorSubsystem"}}), nil
}

func newSpyService(respond func(map[string]any) (code.ExecutionResult, error)) (*Service, *spyExecutor) {
	spy := &spyExecutor{respond: respond}
	svc, err := New(Config{Executor: spy})
	if err != nil {
		panic(err)
	}
	return svc, spy
}
