package trace

import (
	"context"
	"encoding/hex"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when no service name is configured.
const DefaultServiceName = "navscope"

// OTLPExporter exports finished navigations as OpenTelemetry spans.
// A nil *OTLPExporter is valid and exports nothing.
type OTLPExporter struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
}

// NewOTLPExporter creates an OTLP/HTTP exporter for endpoint.
// Returns nil if endpoint is empty (disabled).
func NewOTLPExporter(ctx context.Context, endpoint, serviceName string) (*OTLPExporter, error) {
	if endpoint == "" {
		return nil, nil // Disabled
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(), // For local dev; make configurable
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return NewExporter(provider), nil
}

// NewExporter wraps an existing tracer provider.
func NewExporter(provider *sdktrace.TracerProvider) *OTLPExporter {
	return &OTLPExporter{
		provider: provider,
		tracer:   provider.Tracer("navscope/route"),
	}
}

// ExportNavigation exports nav as a root "navigate" span with one child per
// phase. Timestamps are preserved; span IDs are assigned by the SDK.
func (e *OTLPExporter) ExportNavigation(ctx context.Context, nav *Navigation) error {
	if e == nil {
		return nil
	}
	traceID, err := hexToTraceID(nav.TraceID)
	if err != nil {
		return err
	}
	spanID, err := hexToSpanID(nav.SpanID)
	if err != nil {
		return err
	}

	// Parent the export under a remote span context carrying our IDs so the
	// SDK keeps the navigation's trace ID.
	traceCtx := oteltrace.ContextWithRemoteSpanContext(ctx, oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: oteltrace.FlagsSampled,
		Remote:     true,
	}))

	rootCtx, root := e.tracer.Start(traceCtx, "navigate",
		oteltrace.WithTimestamp(nav.StartTime),
		oteltrace.WithAttributes(
			attribute.Int64("navscope.seq", int64(nav.Seq)),
			attribute.String("navscope.from", nav.From),
			attribute.String("navscope.to", nav.To),
			attribute.Int("navscope.cleanups", nav.Cleanups),
			attribute.String("navscope.result", nav.Result),
			attribute.String("navscope.status", nav.Status),
		),
	)

	for _, span := range nav.Spans {
		_, child := e.tracer.Start(rootCtx, span.Name, oteltrace.WithTimestamp(span.StartTime))
		attrs := make([]attribute.KeyValue, 0, len(span.Attributes))
		for k, v := range span.Attributes {
			attrs = append(attrs, attribute.String("navscope."+k, v))
		}
		child.SetAttributes(attrs...)
		child.End(oteltrace.WithTimestamp(span.StartTime.Add(span.Duration)))
	}

	if nav.Status == StatusFailed {
		root.SetStatus(codes.Error, nav.Error)
	}
	end := nav.EndTime
	if end.IsZero() {
		end = nav.StartTime
	}
	root.End(oteltrace.WithTimestamp(end))
	return nil
}

// hexToTraceID converts a 32-character hex string to trace.TraceID
func hexToTraceID(hexStr string) (oteltrace.TraceID, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return oteltrace.TraceID{}, fmt.Errorf("trace id %q: %w", hexStr, err)
	}
	if len(b) != 16 {
		return oteltrace.TraceID{}, fmt.Errorf("trace id %q: want 16 bytes, got %d", hexStr, len(b))
	}
	var traceID oteltrace.TraceID
	copy(traceID[:], b)
	return traceID, nil
}

// hexToSpanID converts a 16-character hex string to trace.SpanID
func hexToSpanID(hexStr string) (oteltrace.SpanID, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return oteltrace.SpanID{}, fmt.Errorf("span id %q: %w", hexStr, err)
	}
	if len(b) != 8 {
		return oteltrace.SpanID{}, fmt.Errorf("span id %q: want 8 bytes, got %d", hexStr, len(b))
	}
	var spanID oteltrace.SpanID
	copy(spanID[:], b)
	return spanID, nil
}

// Shutdown flushes and closes the exporter
func (e *OTLPExporter) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.provider.Shutdown(ctx)
}
