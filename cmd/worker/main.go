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

	"github.com/kirillkom/query-router/internal/bootstrap"
	"github.com/kirillkom/query-router/internal/config"
	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/observability/logging"
	"github.com/kirillkom/query-router/internal/observability/metrics"
)

const serviceName = "query-router-worker"

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))
	if envErr != nil {
		slog.Debug("dotenv_not_loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		RouteObserver:   workerMetrics,
		BreakerObserver: workerMetrics.ObserveBreakerState,
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	handler := func(handlerCtx context.Context, req domain.RouteRequest) (*domain.RouteDecision, error) {
		routeCtx, cancel := context.WithTimeout(handlerCtx, cfg.WorkerRouteTimeout)
		defer cancel()

		start := time.Now()
		workerMetrics.StartRequest()
		decision, err := app.RouteUC.Route(routeCtx, req)
		workerMetrics.FinishRequest(time.Since(start), err)
		return decision, err
	}

	slog.Info("worker_subscribed", "subject", cfg.NATSRouteSubject, "queue_group", cfg.NATSQueueGroup)
	if err := app.Bus.ServeRouteRequests(ctx, cfg.NATSRouteSubject, cfg.NATSQueueGroup, handler); err != nil {
		slog.Error("worker_serve_failed", "error", err)
		os.Exit(1)
	}
}
