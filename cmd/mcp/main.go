package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/query-router/internal/adapters/mcp"
	"github.com/kirillkom/query-router/internal/bootstrap"
	"github.com/kirillkom/query-router/internal/config"
	"github.com/kirillkom/query-router/internal/core/ports"
	"github.com/kirillkom/query-router/internal/observability/logging"
)

const serviceName = "query-router-mcp"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	// stdout carries MCP frames.
	slog.SetDefault(logging.NewStderrJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var classifier ports.QueryClassifier
	var router ports.QueryRouter

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{})
	if err != nil {
		// Without storage the pure tools still work; route_query is not offered.
		slog.Warn("mcp_storage_unavailable", "error", err)
		standalone, classifierErr := bootstrap.NewClassifier(cfg)
		if classifierErr != nil {
			slog.Error("mcp_classifier_failed", "error", classifierErr)
			os.Exit(1)
		}
		classifier = standalone
	} else {
		defer app.Close()
		classifier = app.Classifier
		router = app.RouteUC
	}

	s := mcpadapter.NewServer(cfg.MCPServerName, classifier, router)
	if err := server.ServeStdio(s); err != nil {
		slog.Error("mcp_serve_failed", "error", err)
		os.Exit(1)
	}
}
