package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/scriptbridge/code"
	"github.com/jonwraymond/scriptbridge/runtime"
)

func TestNew_RequiresExecutor(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestDiscoverModule_SecondCallHitsCache(t *testing.T) {
	svc, spy := newSpyService(fakeRuntime)
	ctx := context.Background()

	first, err := svc.DiscoverModule(ctx, 1, "Actor")
	require.NoError(t, err)
	second, err := svc.DiscoverModule(ctx, 1, "Actor")
	require.NoError(t, err)

	assert.Equal(t, 1, spy.callCount(), "second call must not run another probe")

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestDiscoverModule_KeyParametersMatchProbe(t *testing.T) {
	svc, spy := newSpyService(fakeRuntime)
	ctx := context.Background()

	_, err := svc.DiscoverModule(ctx, 0, "  ACTOR ")
	require.NoError(t, err)
	_, err = svc.DiscoverModule(ctx, 1, "actor")
	require.NoError(t, err)
	assert.Equal(t, 1, spy.callCount(), "normalized depth and filter share one entry")

	params := probeParams(spy.calls[0].Code)
	assert.Equal(t, float64(1), params["depth"])
	assert.Equal(t, "actor", params["filter"])
	assert.Equal(t, "unreal", params["root"])
	assert.Equal(t, runtime.ScopePrivate, spy.calls[0].Scope)

	_, err = svc.DiscoverModule(ctx, 2, "actor")
	require.NoError(t, err)
	assert.Equal(t, 2, spy.callCount())
}

func TestDiscoverModule_MalformedOutput(t *testing.T) {
	svc, _ := newSpyService(func(map[string]any) (code.ExecutionResult, error) {
		return code.ExecutionResult{Success: true, Output: "{not json}"}, nil
	})

	_, err := svc.DiscoverModule(context.Background(), 1, "")
	require.ErrorIs(t, err, ErrIntrospectionFailed)
	assert.NotErrorIs(t, err, code.ErrRuntimeError)

	var ie *IntrospectionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "{not json}", ie.Raw)
}

func TestDiscoverModule_FailuresAreNotCached(t *testing.T) {
	fail := true
	svc, spy := newSpyService(func(params map[string]any) (code.ExecutionResult, error) {
		if fail {
			return code.ExecutionResult{}, code.ErrRuntimeUnavailable
		}
		return fakeRuntime(params)
	})
	ctx := context.Background()

	_, err := svc.DiscoverModule(ctx, 1, "")
	require.ErrorIs(t, err, code.ErrRuntimeUnavailable)

	fail = false
	info, err := svc.DiscoverModule(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 6, info.TotalMembers)
	assert.Equal(t, 2, spy.callCount())
}

func TestDiscoverClass_NotFound(t *testing.T) {
	svc, _ := newSpyService(fakeRuntime)

	_, err := svc.DiscoverClass(context.Background(), "NonExistentClass12345")
	require.ErrorIs(t, err, ErrClassNotFound)
	assert.NotErrorIs(t, err, code.ErrRuntimeError)
}

func TestDiscoverClass_FloatPropertyScenario(t *testing.T) {
	svc, spy := newSpyService(fakeRuntime)
	ctx := context.Background()

	info, err := svc.DiscoverClass(ctx, "FloatProperty")
	require.NoError(t, err)
	assert.Equal(t, "FloatProperty", info.Name)
	require.NotEmpty(t, info.BaseClasses)
	assert.Equal(t, "Property", info.BaseClasses[0])
	assert.Empty(t, info.Methods)
	assert.NotNil(t, info.Methods)
	assert.Equal(t, []string{"default_value"}, info.Properties)

	again, err := svc.DiscoverClass(ctx, "unreal.FloatProperty")
	require.NoError(t, err)
	assert.Equal(t, info, again)
	assert.Equal(t, 1, spy.callCount(), "cached result served without another probe")
}

func TestDiscoverClass_MethodSignaturePlaceholder(t *testing.T) {
	svc, _ := newSpyService(fakeRuntime)

	info, err := svc.DiscoverClass(context.Background(), "Actor")
	require.NoError(t, err)
	require.Len(t, info.Methods, 2)

	native := info.Methods[1]
	assert.Equal(t, "native_thing", native.Name)
	assert.Equal(t, SignaturePlaceholder, native.Signature)
	assert.Empty(t, native.Parameters)
	assert.Equal(t, AnyType, native.ReturnType)
}

func TestDiscoverClass_CachedValueIsReadOnly(t *testing.T) {
	svc, _ := newSpyService(fakeRuntime)
	ctx := context.Background()

	info, err := svc.DiscoverClass(ctx, "FloatProperty")
	require.NoError(t, err)
	info.BaseClasses[0] = "mutated"

	again, err := svc.DiscoverClass(ctx, "FloatProperty")
	require.NoError(t, err)
	assert.Equal(t, "Property", again.BaseClasses[0])
}

func TestDiscoverClass_EmptyName(t *testing.T) {
	svc, spy := newSpyService(fakeRuntime)

	_, err := svc.DiscoverClass(context.Background(), "  unreal. ")
	require.ErrorIs(t, err, ErrInvalidName)
	assert.Equal(t, 0, spy.callCount())
}

func TestDiscoverFunction(t *testing.T) {
	svc, spy := newSpyService(fakeRuntime)
	ctx := context.Background()

	info, err := svc.DiscoverFunction(ctx, "unreal.log")
	require.NoError(t, err)
	assert.Equal(t, []string{"message"}, info.Parameters)
	assert.Equal(t, []string{"str"}, info.ParamTypes)
	assert.Equal(t, "None", info.ReturnType)

	_, err = svc.DiscoverFunction(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, 1, spy.callCount())

	_, err = svc.DiscoverFunction(ctx, "no_such_function")
	require.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestListEditorSubsystems_Uncached(t *testing.T) {
	svc, spy := newSpyService(fakeRuntime)
	ctx := context.Background()

	first, err := svc.ListEditorSubsystems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"EditorActorSubsystem", "LevelEditorSubsystem"}, first)

	_, err = svc.ListEditorSubsystems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, spy.callCount())
}

func TestSearchAPI(t *testing.T) {
	tests := []struct {
		kind string
		want []string
	}{
		{kind: "", want: []string{"Class: Actor", "Class: EditorActorSubsystem", "Class: FloatProperty", "Function: log", "Function: log_warning"}},
		{kind: "ALL", want: []string{"Class: Actor", "Class: EditorActorSubsystem", "Class: FloatProperty", "Function: log", "Function: log_warning"}},
		{kind: "class", want: []string{"Class: Actor", "Class: EditorActorSubsystem", "Class: FloatProperty"}},
		{kind: "Function", want: []string{"Function: log", "Function: log_warning"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			svc, _ := newSpyService(fakeRuntime)
			got, err := svc.SearchAPI(context.Background(), "", tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchAPI_InvalidKind(t *testing.T) {
	svc, spy := newSpyService(fakeRuntime)

	_, err := svc.SearchAPI(context.Background(), "actor", "constant")
	require.ErrorIs(t, err, ErrInvalidKind)
	assert.Equal(t, 0, spy.callCount())
}

func TestRunProbe_ExecutionFailureWithoutPayload(t *testing.T) {
	svc, _ := newSpyService(func(map[string]any) (code.ExecutionResult, error) {
		return code.ExecutionResult{ErrorMessage: "SyntaxError: invalid syntax", ErrorLine: 4}, nil
	})

	_, err := svc.DiscoverClass(context.Background(), "Actor")
	require.ErrorIs(t, err, code.ErrRuntimeError)
	assert.NotErrorIs(t, err, ErrIntrospectionFailed)
	assert.Contains(t, err.Error(), "SyntaxError")
}

func TestRunProbe_WarningsWithPayloadAccepted(t *testing.T) {
	svc, _ := newSpyService(func(params map[string]any) (code.ExecutionResult, error) {
		res, err := fakeRuntime(params)
		res.Success = false
		res.ErrorMessage = "DeprecationWarning: old API"
		res.Output = "loading\n" + res.Output
		return res, err
	})

	info, err := svc.DiscoverFunction(context.Background(), "log")
	require.NoError(t, err)
	assert.Equal(t, "log", info.Name)
}

func TestRunProbe_AdvisoryTimeoutKeepsResult(t *testing.T) {
	svc, _ := newSpyService(func(params map[string]any) (code.ExecutionResult, error) {
		res, _ := fakeRuntime(params)
		return res, &code.TimeoutError{}
	})

	_, err := svc.DiscoverModule(context.Background(), 1, "")
	assert.NoError(t, err)
}

func TestRunProbe_HostErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	svc, _ := newSpyService(func(map[string]any) (code.ExecutionResult, error) {
		return code.ExecutionResult{}, boom
	})

	_, err := svc.ListEditorSubsystems(context.Background())
	require.ErrorIs(t, err, boom)
}
