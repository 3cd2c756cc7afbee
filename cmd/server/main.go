package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/chatclaim/internal/bootstrap"
	"github.com/turtacn/chatclaim/internal/config"
	"github.com/turtacn/chatclaim/internal/infrastructure/monitoring"
	httpserver "github.com/turtacn/chatclaim/internal/interfaces/http"
	"github.com/turtacn/chatclaim/internal/interfaces/http/handlers"
	"github.com/turtacn/chatclaim/pkg/logger"
)

func main() {
	// Logger for startup
	startupLogger, err := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		log.Fatalf("Failed to create startup logger: %v", err)
	}

	// Load config
	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	ctx := context.Background()

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracing", err)
	}

	// Metrics on a dedicated registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)

	// The relay keeps serving chat without claims when the pipeline is not configured.
	if err := cfg.PipelineReady(); err != nil {
		appLogger.Warn(ctx, "Claim pipeline is not fully configured; chat requests will be sent without claim tokens",
			logger.Err(err))
	}

	pipeline := bootstrap.NewPipeline(cfg, appLogger, bootstrap.Options{
		Metrics: monitoring.NewMetricsAdapter(metrics),
	})

	router := httpserver.NewRouter(
		cfg,
		appLogger,
		handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"claim_pipeline": bootstrap.ReadinessCheck(cfg),
		}, appLogger),
		handlers.NewClaimHandler(pipeline.Tokens, !cfg.IsProduction()),
		handlers.NewChatHandler(pipeline.Chat, appLogger),
		tracing.Tracer(),
		metrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)
	router.SetupRoutes()

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Fatal(ctx, "HTTP server failed", err)
		}
	case sig := <-quit:
		appLogger.Info(ctx, "Shutting down", logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Server forced to shutdown", err)
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Tracing shutdown failed", err)
	}
	appLogger.Info(ctx, "Server stopped")
}
