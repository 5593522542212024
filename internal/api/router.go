// Package api provides the HTTP API for RailwayVision.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/themuku/RailwayVision/internal/api/handler"
	"github.com/themuku/RailwayVision/internal/api/middleware"
	"github.com/themuku/RailwayVision/internal/featureflags"
	"github.com/themuku/RailwayVision/internal/lookup"
	"github.com/themuku/RailwayVision/internal/provider/resilience"
	"github.com/themuku/RailwayVision/internal/session"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	Sessions           *session.Manager
	Directory          *lookup.Service
	FeatureFlagService *featureflags.Service
	ProviderRegistry   *resilience.Registry
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "railwayvision-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ProviderRegistry)
	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.Logger)
	centersHandler := handler.NewCentersHandler(cfg.Directory, cfg.Logger)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Directory passthrough - standard rate limiting
		r.Route("/centers", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", centersHandler.ListCenters)
			r.Get("/{centerId}", centersHandler.GetCenter)
		})

		// Planner sessions and their endpoint events
		r.Route("/sessions", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Post("/", sessionHandler.CreateSession)

			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)

				// Route calculation is the expensive operation
				r.With(expensiveRateLimit).Post("/route", sessionHandler.CalculateRoute)

				r.Route("/endpoints/{role}", func(r chi.Router) {
					r.Post("/text", sessionHandler.TypeText)
					r.Post("/focus", sessionHandler.Focus)
					r.Post("/dismiss", sessionHandler.Dismiss)
					r.Post("/select", sessionHandler.Select)
					r.Post("/enter", sessionHandler.PressEnter)
					r.Post("/point", sessionHandler.SetPoint)
				})
			})
		})

		// Feature flags
		r.Route("/flags", func(r chi.Router) {
			r.Get("/", featureFlagsHandler.ListFeatureFlags)
			r.Put("/{key}", featureFlagsHandler.SetFeatureFlag)
		})
	})

	return r
}
