// Package server provides the HTTP server and routing for QuantRisk.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/clients/qpu"
	"github.com/aristath/quantrisk/internal/config"
	"github.com/aristath/quantrisk/internal/database"
	"github.com/aristath/quantrisk/internal/modules/analysis"
	analysishandlers "github.com/aristath/quantrisk/internal/modules/analysis/handlers"
	"github.com/aristath/quantrisk/internal/modules/benchmark"
	benchmarkhandlers "github.com/aristath/quantrisk/internal/modules/benchmark/handlers"
	"github.com/aristath/quantrisk/internal/modules/classical"
	classicalhandlers "github.com/aristath/quantrisk/internal/modules/classical/handlers"
	"github.com/aristath/quantrisk/internal/modules/quantum"
	quantumhandlers "github.com/aristath/quantrisk/internal/modules/quantum/handlers"
	"github.com/aristath/quantrisk/internal/modules/runs"
	runshandlers "github.com/aristath/quantrisk/internal/modules/runs/handlers"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	DB       *database.DB
	Runs     *runs.Repository
	Config   *config.Config
	Provider qpu.Provider // nil means every backend request runs on the simulator
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	runs           *runs.Repository
	cfg            *config.Config
	provider       qpu.Provider
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		db:             cfg.DB,
		runs:           cfg.Runs,
		cfg:            cfg.Config,
		provider:       cfg.Provider,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.DB),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Liveness check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		retention := s.cfg.RunRetention()

		// Classical Monte Carlo estimator
		classicalService := classical.NewService(s.log)
		classicalHandler := classicalhandlers.NewHandler(classicalService, s.runs, retention, s.log)
		classicalHandler.RegisterRoutes(r)

		// Amplitude estimation pipeline. A nil provider keeps every
		// request on the in-process simulator.
		quantumService := quantum.NewService(s.provider, s.log)
		quantumHandler := quantumhandlers.NewHandler(quantumService, s.runs, retention, s.log)
		quantumHandler.RegisterRoutes(r)

		// Side-by-side comparison of both estimators
		analysisService := analysis.NewService(classicalService, quantumService, s.log)
		analysisHandler := analysishandlers.NewHandler(analysisService, s.runs, retention, s.log)
		analysisHandler.RegisterRoutes(r)

		// Convergence benchmark
		benchmarkService := benchmark.NewService(s.log)
		benchmarkHandler := benchmarkhandlers.NewHandler(benchmarkService, s.runs, retention, s.log)
		benchmarkHandler.RegisterRoutes(r)

		// Archived run browsing
		runsHandler := runshandlers.NewHandler(s.runs, s.log)
		runsHandler.RegisterRoutes(r)

		// System monitoring
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Get("/disk", s.systemHandlers.HandleDiskUsage)
		})

		// Readiness check including database state
		r.Get("/health", s.handleAPIHealth)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
