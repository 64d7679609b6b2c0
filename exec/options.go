package exec

import (
	"context"
	"errors"

	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/search"
	"github.com/jonwraymond/tooldiscovery/tooldoc"

	"github.com/jonwraymond/scriptbridge/code"
	"github.com/jonwraymond/scriptbridge/discovery"
	"github.com/jonwraymond/scriptbridge/runtime"
	"github.com/jonwraymond/scriptbridge/sourcefs"
)

// Namespace is the namespace every bridge operation is registered under.
const Namespace = "bridge"

// Errors returned by Options validation.
var (
	ErrEngineRequired    = errors.New("exec: Engine is required")
	ErrDiscoveryRequired = errors.New("exec: Discovery is required")
)

// Engine is the execution surface the facade needs.
// *code.DefaultExecutor satisfies it.
type Engine interface {
	code.Executor

	ExecuteCodeSafe(ctx context.Context, params code.ExecuteParams, validate bool) (code.ExecutionResult, error)
	IsAvailable(ctx context.Context) (bool, error)
	Validated() bool
	GetRuntimeInfo(ctx context.Context) (string, error)
	HostKind() runtime.HostKind
}

var _ Engine = (*code.DefaultExecutor)(nil)

// Logger is the interface for logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures an Exec instance.
type Options struct {
	// Engine runs code against the interpreter.
	// Required.
	Engine Engine

	// Discovery answers introspection requests.
	// Required.
	Discovery *discovery.Service

	// Source serves the source-tree operations.
	// Optional; if nil, they fail with ErrSourceDisabled.
	Source *sourcefs.FS

	// Index holds the operation catalog.
	// Default: an in-memory index with BM25 search.
	Index index.Index

	// Docs provides operation documentation.
	// Default: an in-memory store over Index.
	Docs tooldoc.Store

	// WarnUnsafe scans every execute_code request against the deny-list and
	// logs matches. Execution is never blocked.
	WarnUnsafe bool

	// Logger is an optional logger.
	Logger Logger
}

// validate checks that required fields are set.
func (o *Options) validate() error {
	if o.Engine == nil {
		return ErrEngineRequired
	}
	if o.Discovery == nil {
		return ErrDiscoveryRequired
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Index == nil {
		o.Index = index.NewInMemoryIndex(index.IndexOptions{
			Searcher: search.NewBM25Searcher(search.BM25Config{}),
		})
	}
	if o.Docs == nil {
		o.Docs = tooldoc.NewInMemoryStore(tooldoc.StoreOptions{Index: o.Index})
	}
}
