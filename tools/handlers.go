package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/olgasafonova/mediawiki-client/internal/ftb"
	"github.com/olgasafonova/mediawiki-client/metrics"
	"github.com/olgasafonova/mediawiki-client/tracing"
	"github.com/olgasafonova/mediawiki-client/wiki"
)

// HandlerRegistry binds ToolSpecs to the session and ftb client methods
// that serve them.
type HandlerRegistry struct {
	session   *wiki.Session
	ftbClient *ftb.Client
	logger    *slog.Logger
}

// NewHandlerRegistry creates a registry over session and ftbClient.
func NewHandlerRegistry(session *wiki.Session, ftbClient *ftb.Client, logger *slog.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		session:   session,
		ftbClient: ftbClient,
		logger:    logger,
	}
}

// binder registers one tool on a server.
type binder func(server *mcp.Server, tool *mcp.Tool, spec ToolSpec)

func bind[Args, Result any](h *HandlerRegistry, method func(context.Context, Args) (Result, error)) binder {
	return func(server *mcp.Server, tool *mcp.Tool, spec ToolSpec) {
		register(h, server, tool, spec, method)
	}
}

// binders maps ToolSpec.Method to its typed registration.
func (h *HandlerRegistry) binders() map[string]binder {
	return map[string]binder{
		"QueryList":     bind(h, h.session.QueryListMCP),
		"RecentChanges": bind(h, h.session.RecentChangesMCP),
		"ListTiles":     bind(h, h.ftbClient.ListTilesMCP),
		"ListSheets":    bind(h, h.ftbClient.ListSheetsMCP),
		"ListOres":      bind(h, h.ftbClient.ListOresMCP),
	}
}

// RegisterAll registers every tool in AllTools with server. Specs whose
// method has no binder are logged and skipped.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	binders := h.binders()
	registered := 0
	for _, spec := range AllTools {
		b, ok := binders[spec.Method]
		if !ok {
			h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
			continue
		}
		b(server, h.buildTool(spec), spec)
		registered++
	}
	h.logger.Info("Registered tools", "count", registered)
}

func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: spec.annotations(),
	}
}

// register adds a tool whose handler calls method inside a span, with
// in-flight and outcome metrics, panic recovery and a log line on success.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, args Args) (_ *mcp.CallToolResult, result Result, err error) {
		defer h.recoverPanic(spec.Name, &err)

		ctx, span := toolSpan(ctx, spec)
		defer span.End()

		inFlight := metrics.RequestInFlight.WithLabelValues(spec.Name)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		result, err = method(ctx, args)
		elapsed := time.Since(start).Seconds()
		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", elapsed))
		metrics.RecordRequest(spec.Name, elapsed, err == nil)

		if err != nil {
			tracing.RecordError(span, err)
			var zero Result
			return nil, zero, fmt.Errorf("%s failed: %w", spec.Name, err)
		}
		span.SetStatus(codes.Ok, "")
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

func toolSpan(ctx context.Context, spec ToolSpec) (context.Context, trace.Span) {
	ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
	tracing.AddToolAttributes(span, spec.Name, spec.Category)
	span.SetAttributes(
		attribute.String("mcp.tool.extension", spec.Extension),
		attribute.Bool("mcp.tool.readonly", spec.ReadOnly),
	)
	return ctx, span
}

// recoverPanic turns a handler panic into a tool error.
func (h *HandlerRegistry) recoverPanic(toolName string, err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
	h.logger.Error("Panic recovered",
		"tool", toolName,
		"panic", rec,
		"stack", string(debug.Stack()))
	if err != nil {
		*err = fmt.Errorf("%s failed: internal error", toolName)
	}
}

// logExecution logs a successful call. Args and results implement
// slog.LogValuer, so only their summary fields are written.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	h.logger.Info("Tool executed",
		"tool", spec.Name,
		"extension", spec.Extension,
		"args", args,
		"result", result)
}
