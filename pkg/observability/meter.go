package observability

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewPrometheusMetricsFromConfig builds the otel SDK metric instruments
// PrometheusMetrics records into, backed by a Prometheus exporter bridge
// registered on a dedicated registry (not the global default, so more than
// one Manager in a process never collides) and returns an http.Handler
// serving that registry's /metrics page.
func NewPrometheusMetricsFromConfig(cfg *MetricsConfig) (*PrometheusMetrics, http.Handler, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil, nil
	}
	cfg.SetDefaults()

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry), otelprom.WithNamespace(cfg.Namespace))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(cfg.Namespace)

	var errs []error
	record := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	name := func(parts ...string) string {
		if cfg.Subsystem != "" {
			parts = append([]string{cfg.Subsystem}, parts...)
		}
		out := parts[0]
		for _, p := range parts[1:] {
			out += "_" + p
		}
		return out
	}

	agentDuration, err := meter.Float64Histogram(name("agent", "call_duration_seconds"), metric.WithDescription("Agent invocation duration in seconds"))
	record(err)
	agentCallsTotal, err := meter.Int64Counter(name("agent", "calls_total"), metric.WithDescription("Total agent invocations"))
	record(err)
	agentErrorsTotal, err := meter.Int64Counter(name("agent", "errors_total"), metric.WithDescription("Total agent errors"))
	record(err)
	agentTokensTotal, err := meter.Int64Counter(name("agent", "tokens_total"), metric.WithDescription("Total tokens consumed by agent calls"))
	record(err)

	toolDuration, err := meter.Float64Histogram(name("tool", "call_duration_seconds"), metric.WithDescription("Module execution duration in seconds"))
	record(err)
	toolCallsTotal, err := meter.Int64Counter(name("tool", "calls_total"), metric.WithDescription("Total module invocations"))
	record(err)
	toolErrorsTotal, err := meter.Int64Counter(name("tool", "errors_total"), metric.WithDescription("Total module errors"))
	record(err)

	llmDuration, err := meter.Float64Histogram(name("llm", "call_duration_seconds"), metric.WithDescription("LLM call duration in seconds"))
	record(err)
	llmInputTokens, err := meter.Int64Counter(name("llm", "tokens_input_total"), metric.WithDescription("Total input tokens sent to the LLM"))
	record(err)
	llmOutputTokens, err := meter.Int64Counter(name("llm", "tokens_output_total"), metric.WithDescription("Total output tokens received from the LLM"))
	record(err)
	llmErrorsTotal, err := meter.Int64Counter(name("llm", "errors_total"), metric.WithDescription("Total LLM call errors"))
	record(err)

	httpRequestsTotal, err := meter.Int64Counter(name("http", "requests_total"), metric.WithDescription("Total HTTP requests"))
	record(err)
	httpDuration, err := meter.Float64Histogram(name("http", "request_duration_seconds"), metric.WithDescription("HTTP request duration in seconds"))
	record(err)
	httpRequestSize, err := meter.Int64Histogram(name("http", "request_size_bytes"), metric.WithDescription("HTTP request size in bytes"))
	record(err)
	httpResponseSize, err := meter.Int64Histogram(name("http", "response_size_bytes"), metric.WithDescription("HTTP response size in bytes"))
	record(err)

	grpcCallsTotal, err := meter.Int64Counter(name("grpc", "calls_total"), metric.WithDescription("Total gRPC calls"))
	record(err)
	grpcDuration, err := meter.Float64Histogram(name("grpc", "call_duration_seconds"), metric.WithDescription("gRPC call duration in seconds"))
	record(err)
	grpcErrorsTotal, err := meter.Int64Counter(name("grpc", "errors_total"), metric.WithDescription("Total gRPC call errors"))
	record(err)

	sessionDuration, err := meter.Float64Histogram(name("session", "duration_seconds"), metric.WithDescription("Task run duration in seconds"))
	record(err)
	sessionTotal, err := meter.Int64Counter(name("session", "total"), metric.WithDescription("Total task runs"))
	record(err)
	conversationTurns, err := meter.Int64Histogram(name("conversation", "turns"), metric.WithDescription("Conversation turns per task run"))
	record(err)

	if len(errs) > 0 {
		return nil, nil, fmt.Errorf("create metric instruments: %w", errors.Join(errs...))
	}

	metrics := NewPrometheusMetrics(
		agentDuration, agentCallsTotal, agentErrorsTotal, agentTokensTotal,
		toolDuration, toolCallsTotal, toolErrorsTotal,
		llmDuration, llmInputTokens, llmOutputTokens, llmErrorsTotal,
		httpRequestsTotal, httpDuration, httpRequestSize, httpResponseSize,
		grpcCallsTotal, grpcDuration, grpcErrorsTotal,
		sessionDuration, sessionTotal, conversationTurns,
	)

	return metrics, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
