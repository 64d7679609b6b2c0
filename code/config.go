package code

import (
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/scriptbridge/runtime"
)

// Config holds the configuration for a code executor.
type Config struct {
	// Host runs commands against the embedded interpreter.
	// Required.
	Host runtime.Host

	// DefaultTimeout is the advisory timeout when not specified in
	// ExecuteParams. If zero, no timeout is checked.
	DefaultTimeout time.Duration

	// DefaultScope is the scope when not specified in ExecuteParams.
	// Defaults to runtime.ScopePrivate if empty.
	DefaultScope runtime.Scope

	// Logger is an optional logger for observability.
	Logger Logger

	// TracerProvider supplies the tracer for execution spans.
	// Defaults to the global provider.
	TracerProvider trace.TracerProvider

	// MeterProvider supplies the meter for execution metrics.
	// Defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// Validate checks that all required fields are set.
// Returns ErrConfiguration if any required field is missing or invalid.
func (c *Config) Validate() error {
	var problems []string

	if c.Host == nil {
		problems = append(problems, "missing required field Host")
	}
	if c.DefaultTimeout < 0 {
		problems = append(problems, "DefaultTimeout must not be negative")
	}
	if c.DefaultScope != "" && !c.DefaultScope.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown DefaultScope %q", c.DefaultScope))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, ", "))
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.DefaultScope == "" {
		c.DefaultScope = runtime.ScopePrivate
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}
