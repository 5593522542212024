// Package main provides the entrypoint for the RailwayVision API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/api"
	"github.com/themuku/RailwayVision/internal/api/middleware"
	"github.com/themuku/RailwayVision/internal/featureflags"
	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/lookup/railapi"
	"github.com/themuku/RailwayVision/internal/planner"
	"github.com/themuku/RailwayVision/internal/provider/resilience"
	"github.com/themuku/RailwayVision/internal/session"
	"github.com/themuku/RailwayVision/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "railwayvision-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RailwayVision API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	lookupBaseURL := os.Getenv("LOOKUP_BASE_URL")
	if lookupBaseURL == "" {
		lookupBaseURL = railapi.DefaultBaseURL
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Initialize upstream registry and the rail directory client
	registry := resilience.NewRegistry()
	railClient := railapi.NewClient(railapi.ClientConfig{
		BaseURL:  lookupBaseURL,
		Registry: registry,
		Logger:   log,
	})
	log.Info().
		Str("base_url", lookupBaseURL).
		Msg("rail directory client initialized")

	// Initialize the directory service (cached full dump)
	directory := lookup.NewService(lookup.ServiceConfig{
		Client: railClient,
		Logger: log,
	})

	// Initialize feature flags repository and service
	ffRepo := featureflags.NewInMemoryRepository()
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize the session manager; each session gets its own planner
	// wired to that session's map bridge
	sessions := session.NewManager(session.ManagerConfig{
		Factory: func(bridge *session.MapBridge) *planner.Planner {
			return planner.New(planner.Config{
				Directory: directory,
				Renderer:  bridge,
				Flags:     ffService,
				Logger:    log,
			})
		},
		Logger: log,
	})
	log.Info().Msg("session manager initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		Sessions:           sessions,
		Directory:          directory,
		FeatureFlagService: ffService,
		ProviderRegistry:   registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
