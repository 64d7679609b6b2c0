// Package config loads the bridge configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// SCRIPTBRIDGE_* variables from the process environment or a .env file. The
// process environment wins over .env.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/scriptbridge/logging"
	"github.com/jonwraymond/scriptbridge/runtime"
)

// ErrInvalidConfig indicates a configuration that cannot be loaded or used.
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCRIPTBRIDGE_"

// Config is the full bridge configuration.
type Config struct {
	Host      HostConfig      `yaml:"host"`
	Execution ExecutionConfig `yaml:"execution"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Cache     CacheConfig     `yaml:"cache"`
	Source    SourceConfig    `yaml:"source"`
	Log       LogConfig       `yaml:"log"`
}

// HostConfig selects and configures the interpreter host.
type HostConfig struct {
	// Type is "subprocess" or "remote".
	Type string `yaml:"type"`

	// Interpreter is the subprocess interpreter binary.
	Interpreter string   `yaml:"interpreter,omitempty"`
	WorkDir     string   `yaml:"work_dir,omitempty"`
	PythonPath  []string `yaml:"python_path,omitempty"`

	// Endpoint and Token address a remote host.
	Endpoint      string        `yaml:"endpoint,omitempty"`
	Token         string        `yaml:"token,omitempty"`
	StatusTimeout time.Duration `yaml:"status_timeout,omitempty"`
}

// ExecutionConfig holds engine defaults.
type ExecutionConfig struct {
	// DefaultTimeout is advisory; zero disables the check.
	DefaultTimeout time.Duration `yaml:"default_timeout"`
	DefaultScope   string        `yaml:"default_scope"`
	WarnUnsafe     bool          `yaml:"warn_unsafe"`
}

// DiscoveryConfig holds introspection settings.
type DiscoveryConfig struct {
	RootModule string `yaml:"root_module"`
}

// CacheConfig selects the discovery cache store. A RedisURL selects Redis;
// otherwise entries live in memory, bounded when Capacity > 0.
type CacheConfig struct {
	Capacity int           `yaml:"capacity"`
	RedisURL string        `yaml:"redis_url,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// SourceConfig configures source-tree access. An empty Root disables it.
type SourceConfig struct {
	Root             string   `yaml:"root"`
	AllowedPrefixes  []string `yaml:"allowed_prefixes,omitempty"`
	DefaultMaxLines  int      `yaml:"default_max_lines,omitempty"`
	MaxSearchResults int      `yaml:"max_search_results,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host: HostConfig{
			Type:          string(runtime.HostSubprocess),
			Interpreter:   "python3",
			StatusTimeout: 2 * time.Second,
		},
		Execution: ExecutionConfig{
			DefaultTimeout: 30 * time.Second,
			DefaultScope:   string(runtime.ScopePrivate),
		},
		Discovery: DiscoveryConfig{RootModule: "unreal"},
		Cache:     CacheConfig{Prefix: "scriptbridge:discovery:"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty), and environment overrides. envFiles name .env files to read; with
// none, ".env" in the working directory is read if present.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readYAML(path); err != nil {
			return nil, err
		}
	}

	env, err := environment(envFiles)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readYAML(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}
	return nil
}

// environment merges .env values under the process environment.
func environment(envFiles []string) (map[string]string, error) {
	env := map[string]string{}
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		fromFile, err := godotenv.Read(envFiles...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		for k, v := range fromFile {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	str := func(name string, dst *string) {
		if v, ok := env[EnvPrefix+name]; ok {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(name string, dst *[]string) {
		if v, ok := env[EnvPrefix+name]; ok {
			*dst = splitList(v)
		}
	}
	var errs []error
	dur := func(name string, dst *time.Duration) {
		if v, ok := env[EnvPrefix+name]; ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	num := func(name string, dst *int) {
		if v, ok := env[EnvPrefix+name]; ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	flag := func(name string, dst *bool) {
		if v, ok := env[EnvPrefix+name]; ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("HOST_TYPE", &c.Host.Type)
	str("INTERPRETER", &c.Host.Interpreter)
	str("WORKDIR", &c.Host.WorkDir)
	list("PYTHONPATH", &c.Host.PythonPath)
	str("ENDPOINT", &c.Host.Endpoint)
	str("TOKEN", &c.Host.Token)
	dur("STATUS_TIMEOUT", &c.Host.StatusTimeout)

	dur("DEFAULT_TIMEOUT", &c.Execution.DefaultTimeout)
	str("DEFAULT_SCOPE", &c.Execution.DefaultScope)
	flag("WARN_UNSAFE", &c.Execution.WarnUnsafe)

	str("ROOT_MODULE", &c.Discovery.RootModule)

	num("CACHE_CAPACITY", &c.Cache.Capacity)
	str("REDIS_URL", &c.Cache.RedisURL)
	str("CACHE_PREFIX", &c.Cache.Prefix)
	dur("CACHE_TTL", &c.Cache.TTL)

	str("SOURCE_ROOT", &c.Source.Root)
	list("SOURCE_PREFIXES", &c.Source.AllowedPrefixes)
	num("SOURCE_MAX_LINES", &c.Source.DefaultMaxLines)
	num("SOURCE_MAX_RESULTS", &c.Source.MaxSearchResults)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// splitList splits an OS path list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, p := range filepath.SplitList(v) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	switch runtime.HostKind(c.Host.Type) {
	case runtime.HostSubprocess:
		if c.Host.Interpreter == "" {
			errs = append(errs, errors.New("host.interpreter is required for a subprocess host"))
		}
	case runtime.HostRemote:
		if c.Host.Endpoint == "" {
			errs = append(errs, errors.New("host.endpoint is required for a remote host"))
		}
	default:
		errs = append(errs, fmt.Errorf("host.type %q is not subprocess or remote", c.Host.Type))
	}
	if c.Host.StatusTimeout < 0 {
		errs = append(errs, errors.New("host.status_timeout must be >= 0"))
	}
	if c.Execution.DefaultTimeout < 0 {
		errs = append(errs, errors.New("execution.default_timeout must be >= 0"))
	}
	if _, err := runtime.ParseScope(c.Execution.DefaultScope); err != nil {
		errs = append(errs, fmt.Errorf("execution.default_scope: %v", err))
	}
	if strings.TrimSpace(c.Discovery.RootModule) == "" {
		errs = append(errs, errors.New("discovery.root_module is required"))
	}
	if c.Cache.Capacity < 0 {
		errs = append(errs, errors.New("cache.capacity must be >= 0"))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must be >= 0"))
	}
	if c.Source.DefaultMaxLines < 0 || c.Source.MaxSearchResults < 0 {
		errs = append(errs, errors.New("source limits must be >= 0"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
