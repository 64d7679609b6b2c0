// Command scriptbridge serves the bridge operations as MCP tools over stdio.
//
// Run with: go run ./cmd/scriptbridge -config scriptbridge.yaml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/scriptbridge/cache"
	"github.com/jonwraymond/scriptbridge/code"
	"github.com/jonwraymond/scriptbridge/config"
	"github.com/jonwraymond/scriptbridge/discovery"
	"github.com/jonwraymond/scriptbridge/exec"
	"github.com/jonwraymond/scriptbridge/logging"
	"github.com/jonwraymond/scriptbridge/runtime"
	"github.com/jonwraymond/scriptbridge/runtime/backend/remote"
	"github.com/jonwraymond/scriptbridge/runtime/backend/subprocess"
	"github.com/jonwraymond/scriptbridge/sourcefs"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env", "", "path to a .env file (default: ./.env if present)")
	flag.Parse()

	if err := run(*configPath, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "scriptbridge:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string) error {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(configPath, envFiles...)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, cleanup, err := logging.Setup(cfg.Log.File, level)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge, closer, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	server := newServer(bridge, logger)
	logger.Info("serving bridge operations", "host", cfg.Host.Type, "tools", len(bridge.Tools()))
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// build wires the host, engine, discovery cache and source tree into an Exec.
// The returned closer releases the cache store.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*exec.Exec, io.Closer, error) {
	host, err := newHost(cfg.Host, logger)
	if err != nil {
		return nil, nil, err
	}
	scope, err := runtime.ParseScope(cfg.Execution.DefaultScope)
	if err != nil {
		return nil, nil, err
	}
	engine, err := code.NewDefaultExecutor(code.Config{
		Host:           host,
		DefaultTimeout: cfg.Execution.DefaultTimeout,
		DefaultScope:   scope,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, err
	}

	store, closer, err := newStore(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	discoveryCache, err := cache.New(cache.Config{Store: store, Logger: logger})
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	disc, err := discovery.New(discovery.Config{
		Executor:   engine,
		Cache:      discoveryCache,
		RootModule: cfg.Discovery.RootModule,
		Logger:     logger,
	})
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}

	var source *sourcefs.FS
	if cfg.Source.Root != "" {
		source, err = sourcefs.New(sourcefs.Config{
			Root:             cfg.Source.Root,
			AllowedPrefixes:  cfg.Source.AllowedPrefixes,
			DefaultMaxLines:  cfg.Source.DefaultMaxLines,
			MaxSearchResults: cfg.Source.MaxSearchResults,
			Logger:           logger,
		})
		if err != nil {
			_ = closer.Close()
			return nil, nil, err
		}
	}

	bridge, err := exec.New(exec.Options{
		Engine:     engine,
		Discovery:  disc,
		Source:     source,
		WarnUnsafe: cfg.Execution.WarnUnsafe,
		Logger:     logger,
	})
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return bridge, closer, nil
}

func newHost(cfg config.HostConfig, logger *slog.Logger) (runtime.Host, error) {
	switch runtime.HostKind(cfg.Type) {
	case runtime.HostSubprocess:
		return subprocess.New(subprocess.Config{
			Interpreter: cfg.Interpreter,
			WorkDir:     cfg.WorkDir,
			PythonPath:  cfg.PythonPath,
			Logger:      logger,
		}), nil
	case runtime.HostRemote:
		client := remote.NewHTTPClient(remote.HTTPClientConfig{
			Endpoint: cfg.Endpoint,
			Token:    cfg.Token,
		})
		return remote.New(remote.Config{
			Client:        client,
			StatusTimeout: cfg.StatusTimeout,
			Logger:        logger,
		}), nil
	}
	return nil, fmt.Errorf("%w: unknown host type %q", config.ErrInvalidConfig, cfg.Type)
}

func newStore(ctx context.Context, cfg config.CacheConfig) (cache.Store, io.Closer, error) {
	if cfg.RedisURL != "" {
		store, err := cache.OpenRedisStore(ctx, cache.RedisOptions{
			URL:    cfg.RedisURL,
			Prefix: cfg.Prefix,
			TTL:    cfg.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	}
	store, err := cache.NewMemoryStore(cfg.Capacity)
	if err != nil {
		return nil, nil, err
	}
	return store, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newServer registers every bridge operation as an MCP tool.
func newServer(bridge *exec.Exec, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "scriptbridge", Version: version}, nil)
	for _, tool := range bridge.Tools() {
		server.AddTool(tool, toolHandler(bridge, tool.Name, logger))
	}
	return server
}

// toolError is the payload of a failed tool call.
type toolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

func toolHandler(bridge *exec.Exec, name string, logger *slog.Logger) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		res, err := bridge.Call(ctx, exec.OperationID(name), args)

		payload := res.Value
		if err != nil {
			payload = toolError{Code: exec.ErrorCode(err), Message: err.Error(), Result: res.Value}
		}
		text, merr := json.Marshal(payload)
		if merr != nil {
			logger.Error("encode tool result", "operation", name, "error", merr)
			return nil, merr
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
			IsError: err != nil,
		}, nil
	}
}
