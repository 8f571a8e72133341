package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// noopSpan returns a span that discards everything recorded on it, used by
// every Tracer method when the receiver is nil (tracing disabled).
func noopSpan() trace.Span {
	_, span := nooptrace.NewTracerProvider().Tracer("").Start(context.Background(), "noop")
	return span
}

// GetTracer returns a named tracer off the process-global TracerProvider
// (a no-op provider until a *Tracer has been constructed via NewTracer).
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Tracer wraps an OpenTelemetry TracerProvider with the span helpers the
// role engine's turn loop and module dispatch call at each activation.
// A nil *Tracer is the disabled/no-op case; every method is nil-safe.
type Tracer struct {
	provider        *sdktrace.TracerProvider
	tracer          trace.Tracer
	debugExporter   *DebugExporter
	capturePayloads bool
}

// TracerOption configures a Tracer at construction time.
type TracerOption func(*Tracer)

// WithDebugExporter attaches an in-memory span exporter for inspection.
func WithDebugExporter(exporter *DebugExporter) TracerOption {
	return func(t *Tracer) { t.debugExporter = exporter }
}

// WithCapturePayloads enables recording full request/response text on spans.
func WithCapturePayloads(enabled bool) TracerOption {
	return func(t *Tracer) { t.capturePayloads = enabled }
}

// NewTracer builds a Tracer from TracingConfig, registering it as the
// process-global TracerProvider so GetTracer and instrumented dependencies
// (e.g. HTTP clients) pick it up automatically.
func NewTracer(ctx context.Context, cfg *TracingConfig, opts ...TracerOption) (*Tracer, error) {
	t := &Tracer{}
	for _, opt := range opts {
		opt(t)
	}

	var exporter sdktrace.SpanExporter
	var err error
	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.IsInsecure() {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, grpcOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
		sdktrace.WithResource(res),
	}
	if t.debugExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(t.debugExporter))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	t.provider = tp
	t.tracer = tp.Tracer(cfg.ServiceName)
	return t, nil
}

// Start opens a generic span.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t == nil {
		return ctx, noopSpan()
	}
	return t.tracer.Start(ctx, name, opts...)
}

// StartAgentRun opens the span around one role activation.
func (t *Tracer) StartAgentRun(ctx context.Context, eventID, role, taskID, llmModel, llmProvider string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, noopSpan()
	}
	return t.tracer.Start(ctx, SpanAgentCall, trace.WithAttributes(
		attribute.String(AttrEventID, eventID),
		attribute.String(AttrAgentName, role),
		attribute.String(AttrAgentLLM, llmModel),
		attribute.String("taskforge.task_id", taskID),
		attribute.String("taskforge.llm_provider", llmProvider),
	))
}

// StartLLMCall opens the span around one LLM completion request within a turn.
func (t *Tracer) StartLLMCall(ctx context.Context, model string, turn int) (context.Context, trace.Span) {
	if t == nil {
		return ctx, noopSpan()
	}
	return t.tracer.Start(ctx, SpanLLMRequest, trace.WithAttributes(
		attribute.String(AttrLLMModel, model),
		attribute.Int("llm.turn", turn),
	))
}

// StartToolExecution opens the span around one dispatched module request.
func (t *Tracer) StartToolExecution(ctx context.Context, module, taskID, role string) (context.Context, trace.Span) {
	if t == nil {
		return ctx, noopSpan()
	}
	return t.tracer.Start(ctx, SpanToolExecution, trace.WithAttributes(
		attribute.String(AttrToolName, module),
		attribute.String("taskforge.task_id", taskID),
		attribute.String("taskforge.role", role),
	))
}

// StartMemorySearch opens the span around a memories/rag module lookup.
func (t *Tracer) StartMemorySearch(ctx context.Context, indexType string, topK int) (context.Context, trace.Span) {
	if t == nil {
		return ctx, noopSpan()
	}
	return t.tracer.Start(ctx, SpanMemoryLookup, trace.WithAttributes(
		attribute.String("memory.index_type", indexType),
		attribute.Int("memory.top_k", topK),
	))
}

// AddLLMUsage records token usage on an open LLM call span.
func (t *Tracer) AddLLMUsage(span trace.Span, inputTokens, outputTokens int) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int(AttrLLMTokensInput, inputTokens),
		attribute.Int(AttrLLMTokensOutput, outputTokens),
	)
}

// AddLLMFinishReason records why the model stopped generating.
func (t *Tracer) AddLLMFinishReason(span trace.Span, reason string) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.String("llm.finish_reason", reason))
}

// AddPayload optionally records the full prompt/reply text, gated by
// capture_payloads since it can make spans large.
func (t *Tracer) AddPayload(span trace.Span, request, response string) {
	if t == nil || !t.capturePayloads || span == nil {
		return
	}
	span.SetAttributes(
		attribute.String("llm.request", truncateString(request, 4096)),
		attribute.String("llm.response", truncateString(response, 4096)),
	)
}

// AddToolPayload optionally records a module request/result body.
func (t *Tracer) AddToolPayload(span trace.Span, input, output string) {
	if t == nil || !t.capturePayloads || span == nil {
		return
	}
	span.SetAttributes(
		attribute.String("tool.input", truncateString(input, 4096)),
		attribute.String("tool.output", truncateString(output, 4096)),
	)
}

// RecordError marks a span as failed, if err is non-nil.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorType, err.Error()))
}

// DebugExporter returns the in-memory span store, or nil if not configured.
func (t *Tracer) DebugExporter() *DebugExporter {
	if t == nil {
		return nil
	}
	return t.debugExporter
}

// Shutdown flushes and closes the underlying TracerProvider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
