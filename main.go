// MediaWiki client MCP server - a Model Context Protocol server over the
// MediaWiki API client. Provides read-only list, recent change, tilesheet
// and ore dictionary tools.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/mediawiki-client/internal/ftb"
	"github.com/olgasafonova/mediawiki-client/tools"
	"github.com/olgasafonova/mediawiki-client/tracing"
	"github.com/olgasafonova/mediawiki-client/wiki"
)

const (
	ServerName    = "mediawiki-client-mcp"
	ServerVersion = "0.1.0"
)

const serverInstructions = `Read-only tools over a MediaWiki API with the FTB Tilesheets and OreDict extensions.

Available tools:
- mediawiki_query_list: Run any list query, following continuation
- mediawiki_recent_changes: Most recent wiki changes
- ftb_list_tiles: Tilesheet tiles, optionally per mod
- ftb_list_sheets: Tilesheets and their sizes
- ftb_list_ores: Ore dictionary entries, optionally per mod and tag

Configure via environment variables:
- MEDIAWIKI_URL: Wiki API URL (e.g., https://ftb.fandom.com/api.php)
- MEDIAWIKI_USERNAME / MEDIAWIKI_PASSWORD: Bot password login (optional)
- MEDIAWIKI_CONFIG: JSON or YAML config file (optional)
- METRICS_ADDR: Serve Prometheus metrics on this address (optional)`

func main() {
	// Logging goes to stderr; stdout carries the MCP protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", "error", err)
		}
	}()

	config, err := wiki.LoadConfig(os.Getenv("MEDIAWIKI_CONFIG"))
	if err != nil {
		return err
	}
	session, err := wiki.New(ctx, config, logger)
	if err != nil {
		return err
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		srv := newMetricsServer(addr)
		go func() {
			logger.Info("Serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	server := newServer(session, logger)
	logger.Info("Starting MCP server",
		"name", ServerName,
		"version", ServerVersion,
		"wiki_url", config.BaseURL,
		"authenticated", session.Authenticated(),
	)
	return server.Run(ctx, &mcp.StdioTransport{})
}

// newServer creates the MCP server with every tool registered
func newServer(session *wiki.Session, logger *slog.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: serverInstructions,
	})
	tools.NewHandlerRegistry(session, ftb.NewClient(session), logger).RegisterAll(server)
	return server
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
