// Package exec provides a unified facade over the bridge operations.
//
// An [Exec] registers each operation (code execution, discovery, source
// access and runtime status) as a tool in a tooldiscovery index under the
// "bridge" namespace, so callers can search and describe operations before
// invoking them with [Exec.Call].
//
// # Basic Usage
//
//	host := subprocess.New(subprocess.Config{})
//	engine, _ := code.NewDefaultExecutor(code.Config{Host: host})
//	disc, _ := discovery.New(discovery.Config{Executor: engine})
//
//	bridge, err := exec.New(exec.Options{Engine: engine, Discovery: disc})
//
//	res, err := bridge.Call(ctx, "bridge:evaluate_expression",
//	    json.RawMessage(`{"expression": "6 * 7"}`))
//
// # Errors
//
// Every error maps to a stable wire code through [ErrorCode], for example
// CLASS_NOT_FOUND or INVALID_PATH. Exceptions raised by executed code are not
// errors: the call succeeds and the result reports success=false.
//
// # Integration
//
// The exec package integrates with:
//
//   - [github.com/jonwraymond/tooldiscovery/index] for operation registration and search
//   - [github.com/jonwraymond/tooldiscovery/tooldoc] for operation documentation
//   - [github.com/jonwraymond/toolfoundation/model] for tool and backend types
//   - [github.com/modelcontextprotocol/go-sdk/mcp] for tool definitions served over MCP
package exec
