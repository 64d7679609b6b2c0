package exec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"

	"github.com/jonwraymond/scriptbridge/discovery"
	"github.com/jonwraymond/scriptbridge/sourcefs"
)

// Exec is the unified facade over the bridge operations.
// It registers every operation in a searchable catalog and dispatches calls
// by operation ID.
type Exec struct {
	index     index.Index
	docs      tooldoc.Store
	engine    Engine
	discovery *discovery.Service
	source    *sourcefs.FS
	logger    Logger
	opts      Options

	ops   map[string]operation
	order []string
}

// New creates a new Exec instance and registers the operation catalog.
func New(opts Options) (*Exec, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	e := &Exec{
		index:     opts.Index,
		docs:      opts.Docs,
		engine:    opts.Engine,
		discovery: opts.Discovery,
		source:    opts.Source,
		logger:    opts.Logger,
		opts:      opts,
		ops:       make(map[string]operation),
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}

	docStore, canDocument := e.docs.(*tooldoc.InMemoryStore)
	for _, op := range e.operations() {
		if err := e.index.RegisterTool(op.tool(), model.NewLocalBackend(op.name)); err != nil {
			return nil, fmt.Errorf("register %s: %w", op.name, err)
		}
		id := OperationID(op.name)
		if canDocument {
			if err := docStore.RegisterDoc(id, op.doc); err != nil {
				e.logger.Warn("operation doc not registered", "operation", id, "error", err)
			}
		}
		e.ops[op.name] = op
		e.order = append(e.order, op.name)
	}
	return e, nil
}

// OperationID returns the canonical ID for an operation name.
func OperationID(name string) string {
	return Namespace + ":" + name
}

// Call decodes rawArgs, runs the operation named by id and returns its
// JSON-serializable output. id may be canonical ("bridge:execute_code") or a
// bare operation name.
func (e *Exec) Call(ctx context.Context, id string, rawArgs json.RawMessage) (Result, error) {
	start := time.Now()
	name := strings.TrimPrefix(id, Namespace+":")
	op, ok := e.ops[name]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownOperation, id)
		return Result{OperationID: id, Error: err}, err
	}

	value, err := op.handle(ctx, rawArgs)
	result := Result{
		Value:       value,
		OperationID: OperationID(name),
		Duration:    time.Since(start),
		Error:       err,
	}
	if err != nil {
		e.logger.Warn("operation failed",
			"operation", result.OperationID,
			"code", ErrorCode(err),
			"error", err)
	}
	return result, err
}

// SearchOperations finds operations matching a query.
func (e *Exec) SearchOperations(ctx context.Context, query string, limit int) ([]OperationSummary, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return e.index.Search(query, limit)
}

// DescribeOperation retrieves operation documentation at the specified
// detail level.
func (e *Exec) DescribeOperation(ctx context.Context, id string, level tooldoc.DetailLevel) (tooldoc.ToolDoc, error) {
	if ctx.Err() != nil {
		return tooldoc.ToolDoc{}, ctx.Err()
	}
	if !strings.Contains(id, ":") {
		id = OperationID(id)
	}
	return e.docs.DescribeTool(id, level)
}

// Tools returns the MCP definitions of every operation in registration
// order.
func (e *Exec) Tools() []*mcp.Tool {
	out := make([]*mcp.Tool, 0, len(e.order))
	for _, name := range e.order {
		t := e.ops[name].tool()
		out = append(out, &t.Tool)
	}
	return out
}

// Index returns the underlying operation index.
func (e *Exec) Index() index.Index {
	return e.index
}

// DocStore returns the underlying documentation store.
func (e *Exec) DocStore() tooldoc.Store {
	return e.docs
}

func (op operation) tool() model.Tool {
	return model.Tool{
		Tool: mcp.Tool{
			Name:        op.name,
			Description: op.description,
			InputSchema: op.schema,
		},
		Namespace: Namespace,
		Tags:      model.NormalizeTags(op.tags),
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
