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

	"github.com/joho/godotenv"

	httpadapter "github.com/kirillkom/query-router/internal/adapters/http"
	"github.com/kirillkom/query-router/internal/bootstrap"
	"github.com/kirillkom/query-router/internal/config"
	"github.com/kirillkom/query-router/internal/observability/logging"
	"github.com/kirillkom/query-router/internal/observability/metrics"
)

const serviceName = "query-router-api"

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))
	if envErr != nil {
		slog.Debug("dotenv_not_loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	routingMetrics := metrics.NewRoutingMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		RouteObserver:   routingMetrics,
		BreakerObserver: routingMetrics.ObserveBreakerState,
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(cfg, app.RouteUC, app.Classifier, app.Repo).
		WithMetrics(routingMetrics).
		Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
