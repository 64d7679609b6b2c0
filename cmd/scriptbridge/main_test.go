package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/scriptbridge/config"
	"github.com/jonwraymond/scriptbridge/exec"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Host.Interpreter = "scriptbridge-missing-interpreter"
	cfg.Source.Root = t.TempDir()
	return &cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func callTool(t *testing.T, bridge *exec.Exec, name, args string) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	handler := toolHandler(bridge, name, quietLogger())
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: name, Arguments: json.RawMessage(args)}}

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return res, payload
}

func TestBuild_RegistersEveryOperation(t *testing.T) {
	bridge, closer, err := build(context.Background(), testConfig(t), quietLogger())
	require.NoError(t, err)
	defer closer.Close()

	assert.Len(t, bridge.Tools(), 11)
	assert.NotNil(t, newServer(bridge, quietLogger()))
}

func TestNewHost_UnknownType(t *testing.T) {
	_, err := newHost(config.HostConfig{Type: "carrier-pigeon"}, quietLogger())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestToolHandler_RuntimeInfo(t *testing.T) {
	bridge, closer, err := build(context.Background(), testConfig(t), quietLogger())
	require.NoError(t, err)
	defer closer.Close()

	res, payload := callTool(t, bridge, exec.OpRuntimeInfo, `{}`)
	assert.False(t, res.IsError)
	assert.Equal(t, false, payload["available"])
	assert.Equal(t, "subprocess", payload["host"])
}

func TestToolHandler_ErrorPayload(t *testing.T) {
	bridge, closer, err := build(context.Background(), testConfig(t), quietLogger())
	require.NoError(t, err)
	defer closer.Close()

	res, payload := callTool(t, bridge, exec.OpExecuteCode, `{"code": "print(1)"}`)
	assert.True(t, res.IsError)
	assert.Equal(t, exec.CodeRuntimeUnavailable, payload["code"])
	assert.NotEmpty(t, payload["message"])

	res, payload = callTool(t, bridge, exec.OpReadSourceFile, `{"path": "../outside.txt"}`)
	assert.True(t, res.IsError)
	assert.Equal(t, exec.CodeInvalidPath, payload["code"])
}
