package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonwraymond/scriptbridge/cache"
	"github.com/jonwraymond/scriptbridge/code"
	"github.com/jonwraymond/scriptbridge/runtime"
)

// DefaultRootModule is the host module probes introspect by default.
const DefaultRootModule = "unreal"

// Search kinds accepted by SearchAPI.
const (
	KindAll      = "all"
	KindClass    = "class"
	KindFunction = "function"
)

// Logger is the interface for logging.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config configures a Service.
type Config struct {
	// Executor runs probe scripts.
	// Required.
	Executor code.Executor

	// Cache memoizes results. Default: an unbounded in-memory cache.
	Cache *cache.Cache

	// RootModule is the module probes start from.
	// Default: DefaultRootModule
	RootModule string

	// Logger is an optional logger.
	Logger Logger
}

// Service runs discovery operations.
type Service struct {
	exec   code.Executor
	cache  *cache.Cache
	gen    *Generator
	root   string
	logger Logger
}

// New creates a discovery service.
func New(cfg Config) (*Service, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("%w: missing required field Executor", ErrConfiguration)
	}
	if cfg.RootModule == "" {
		cfg.RootModule = DefaultRootModule
	}
	if cfg.Cache == nil {
		c, err := cache.New(cache.Config{})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		cfg.Cache = c
	}
	return &Service{
		exec:   cfg.Executor,
		cache:  cfg.Cache,
		gen:    NewGenerator(cfg.RootModule),
		root:   cfg.RootModule,
		logger: cfg.Logger,
	}, nil
}

// Cache returns the service's cache, for invalidation and stats.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// RootModule returns the introspected root module name.
func (s *Service) RootModule() string {
	return s.root
}

// DiscoverModule lists the root module's members whose names contain filter,
// case-insensitively. maxDepth below 1 is treated as 1; deeper levels walk
// submodules and report dotted names.
func (s *Service) DiscoverModule(ctx context.Context, maxDepth int, filter string) (ModuleInfo, error) {
	maxDepth = max(maxDepth, 1)
	filter = strings.ToLower(strings.TrimSpace(filter))

	info, cached, err := cache.Fetch(ctx, s.cache, cache.ModuleKey(maxDepth, filter), func(ctx context.Context) (ModuleInfo, error) {
		script, err := s.gen.Module(maxDepth, filter)
		if err != nil {
			return ModuleInfo{}, err
		}
		output, err := s.runProbe(ctx, ProbeModule, script)
		if err != nil {
			return ModuleInfo{}, err
		}
		return ParseModuleInfo(output)
	})
	if err != nil {
		return ModuleInfo{}, err
	}
	s.debug("module discovered", "depth", maxDepth, "filter", filter, "members", info.TotalMembers, "cached", cached)
	return info, nil
}

// DiscoverClass describes a class. An optional root-module prefix is
// stripped from name.
func (s *Service) DiscoverClass(ctx context.Context, name string) (ClassInfo, error) {
	name, err := s.normalize(name)
	if err != nil {
		return ClassInfo{}, err
	}
	info, cached, err := cache.Fetch(ctx, s.cache, cache.ClassKey(name), func(ctx context.Context) (ClassInfo, error) {
		script, err := s.gen.Class(name)
		if err != nil {
			return ClassInfo{}, err
		}
		output, err := s.runProbe(ctx, ProbeClass, script)
		if err != nil {
			return ClassInfo{}, err
		}
		return ParseClassInfo(output)
	})
	if err != nil {
		return ClassInfo{}, err
	}
	s.debug("class discovered", "class", name, "methods", len(info.Methods), "cached", cached)
	return info, nil
}

// DiscoverFunction describes a function or method. An optional root-module
// prefix is stripped from path.
func (s *Service) DiscoverFunction(ctx context.Context, path string) (FunctionInfo, error) {
	path, err := s.normalize(path)
	if err != nil {
		return FunctionInfo{}, err
	}
	info, cached, err := cache.Fetch(ctx, s.cache, cache.FunctionKey(path), func(ctx context.Context) (FunctionInfo, error) {
		script, err := s.gen.Function(path)
		if err != nil {
			return FunctionInfo{}, err
		}
		output, err := s.runProbe(ctx, ProbeFunction, script)
		if err != nil {
			return FunctionInfo{}, err
		}
		return ParseFunctionInfo(output)
	})
	if err != nil {
		return FunctionInfo{}, err
	}
	s.debug("function discovered", "function", path, "cached", cached)
	return info, nil
}

// ListEditorSubsystems lists root-module classes whose names contain both
// "Editor" and "Subsystem". Results are never cached.
func (s *Service) ListEditorSubsystems(ctx context.Context) ([]string, error) {
	script, err := s.gen.Subsystems()
	if err != nil {
		return nil, err
	}
	output, err := s.runProbe(ctx, ProbeSubsystems, script)
	if err != nil {
		return nil, err
	}
	return ParseSubsystems(output)
}

// SearchAPI lists classes and functions matching pattern as labeled strings
// such as "Class: Actor". kind is all, class or function; empty means all.
func (s *Service) SearchAPI(ctx context.Context, pattern, kind string) ([]string, error) {
	kind = cases.Fold().String(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindAll
	}
	if kind != KindAll && kind != KindClass && kind != KindFunction {
		return nil, fmt.Errorf("%w: %q (want all, class or function)", ErrInvalidKind, kind)
	}

	info, err := s.DiscoverModule(ctx, 1, pattern)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(info.Classes)+len(info.Functions))
	if kind != KindFunction {
		labels = label(labels, KindClass, info.Classes)
	}
	if kind != KindClass {
		labels = label(labels, KindFunction, info.Functions)
	}
	return labels, nil
}

// label appends "Kind: name" entries.
func label(dst []string, kind string, names []string) []string {
	prefix := cases.Title(language.English).String(kind) + ": "
	for _, name := range names {
		dst = append(dst, prefix+name)
	}
	return dst
}

func (s *Service) normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, s.root+".")
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	return name, nil
}

// runProbe executes a probe and returns its info output. A failed run that
// still printed a payload is accepted; probes report their own errors.
func (s *Service) runProbe(ctx context.Context, probe Probe, script string) (string, error) {
	res, err := s.exec.ExecuteCode(ctx, code.ExecuteParams{Code: script, Scope: runtime.ScopePrivate})
	switch {
	case errors.Is(err, code.ErrTimeoutExceeded):
		s.warn("probe exceeded advisory timeout", "probe", probe, "error", err)
	case err != nil:
		return "", err
	}
	if _, ok := payloadLine(res.Output); !ok && !res.Success {
		return "", &code.CodeError{Message: fmt.Sprintf("%s probe: %s", probe, res.ErrorMessage), Line: res.ErrorLine}
	}
	if !res.Success {
		s.warn("probe reported problems", "probe", probe, "message", res.ErrorMessage)
	}
	return res.Output, nil
}

func (s *Service) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Service) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
