package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/SPAN-LLC/langfuse"

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// SpanOptions configures Instrument (spec §4.8).
type SpanOptions struct {
	Name string
	// RootSpan forces a fresh trace even if the incoming context carries a
	// parent span (spec §4.6: the eval-job-creator worker opens a root
	// consumer span per job).
	RootSpan bool
	SpanKind trace.SpanKind
	// RemoteTraceContext, when non-empty, is a W3C traceparent header value
	// propagated through a queue job payload; the new span becomes its
	// child instead of a root (spec §4.7: the executor's span is a child of
	// the creator's when that context is available).
	RemoteTraceContext string
}

// Instrument opens a consumer span around fn, records any returned error
// onto the span, and always ends the span (spec §4.8's instrument wrapper).
func Instrument(ctx context.Context, opts SpanOptions, fn func(ctx context.Context) error) error {
	if opts.RootSpan {
		ctx = context.Background()
	} else if opts.RemoteTraceContext != "" {
		carrier := propagation.MapCarrier{"traceparent": opts.RemoteTraceContext}
		ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
	}

	ctx, span := tracer().Start(ctx, opts.Name, trace.WithSpanKind(opts.SpanKind))
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// CurrentTraceContext extracts the W3C traceparent for the span active in
// ctx, for embedding into a queue job payload so a downstream worker can
// continue the trace (spec §4.7 supplement).
func CurrentTraceContext(ctx context.Context) string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.Get("traceparent")
}

// TraceException forwards err to the error tracker. Expected errors (API
// errors, missing-provider-key errors) should be filtered by the caller
// before calling this (spec §4.7, §7).
func TraceException(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	slog.Default().Error("unhandled exception", slog.String("error", err.Error()))
}
