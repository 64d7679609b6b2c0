package code

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonwraymond/scriptbridge/runtime"
)

const instrumentationName = "github.com/jonwraymond/scriptbridge/code"

// telemetry holds the tracer and metric instruments for the executor.
type telemetry struct {
	tracer     trace.Tracer
	executions metric.Int64Counter
	duration   metric.Float64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	executions, err := meter.Int64Counter(
		"scriptbridge.executions",
		metric.WithDescription("Number of commands run against the host"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create executions counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"scriptbridge.execution.duration_ms",
		metric.WithDescription("Measured execution time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &telemetry{
		tracer:     tp.Tracer(instrumentationName),
		executions: executions,
		duration:   duration,
	}, nil
}

func (t *telemetry) start(ctx context.Context, op string, cmd runtime.Command) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("scriptbridge.mode", string(cmd.Mode)),
		attribute.String("scriptbridge.scope", string(cmd.Scope)),
	))
}

// finish records the outcome on the span and the metric instruments.
func (t *telemetry) finish(ctx context.Context, span trace.Span, op string, res ExecutionResult, elapsed time.Duration, err error) {
	defer span.End()

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !res.Success:
		outcome = "failure"
		span.SetStatus(codes.Error, res.ErrorMessage)
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(
		attribute.Int64("scriptbridge.duration_ms", elapsed.Milliseconds()),
		attribute.Bool("scriptbridge.success", err == nil && res.Success),
	)

	opts := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	)
	t.executions.Add(ctx, 1, opts)
	t.duration.Record(ctx, float64(elapsed.Microseconds())/1000, opts)
}
