// Package tracing wires OpenTelemetry spans around wiki API calls, query
// pages and MCP tool calls. Tracing is off unless OTEL_ENABLED=true or an
// OTLP endpoint is configured.
package tracing

import (
	"context"
	"io"
	"os"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "github.com/olgasafonova/mediawiki-client"

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	OTLPEndpoint   string // OTLP/HTTP collector; empty exports to Writer
	SampleRate     float64

	// Writer receives spans when no OTLP endpoint is set. It defaults to
	// stderr, since stdout carries the MCP protocol.
	Writer io.Writer
}

// DefaultConfig reads the OTEL_* environment
func DefaultConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("OTEL")
	v.SetDefault("environment", "development")
	v.SetDefault("traces_sampler_arg", 1.0)
	for _, key := range []string{"enabled", "environment", "exporter_otlp_endpoint", "traces_sampler_arg", "service_name"} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("service_name", "mediawiki-client")

	endpoint := v.GetString("exporter_otlp_endpoint")
	return Config{
		ServiceName:    v.GetString("service_name"),
		ServiceVersion: "0.1.0",
		Environment:    v.GetString("environment"),
		Enabled:        v.GetBool("enabled") || endpoint != "",
		OTLPEndpoint:   endpoint,
		SampleRate:     v.GetFloat64("traces_sampler_arg"),
		Writer:         os.Stderr,
	}
}

// Setup installs the global tracer provider and returns its shutdown function
func Setup(ctx context.Context, config Config) (func(context.Context) error, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("deployment.environment", config.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, config)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(config.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, config Config) (sdktrace.SpanExporter, error) {
	if config.OTLPEndpoint != "" {
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(config.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
	}
	w := config.Writer
	if w == nil {
		w = os.Stderr
	}
	return stdouttrace.New(stdouttrace.WithWriter(w))
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Tracer returns the package tracer
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span named name under ctx
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// AddToolAttributes tags an MCP tool call span
func AddToolAttributes(span trace.Span, toolName, category string) {
	span.SetAttributes(
		attribute.String("mcp.tool.name", toolName),
		attribute.String("mcp.tool.category", category),
	)
}

// AddRequestAttributes tags an API call span
func AddRequestAttributes(span trace.Span, method, action string) {
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("wiki.api.action", action),
	)
}

// AddQueryAttributes tags a query page span
func AddQueryAttributes(span trace.Span, list string, page int) {
	span.SetAttributes(
		attribute.String("wiki.query.list", list),
		attribute.Int("wiki.query.page", page),
	)
}

// RecordError marks span failed with err; nil is ignored
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
