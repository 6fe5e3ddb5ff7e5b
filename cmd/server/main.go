package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/heroual/MTSAV/internal/aggregator"
	"github.com/heroual/MTSAV/internal/api"
	"github.com/heroual/MTSAV/internal/auth"
	"github.com/heroual/MTSAV/internal/config"
	"github.com/heroual/MTSAV/internal/ingestion"
	"github.com/heroual/MTSAV/internal/insights"
	"github.com/heroual/MTSAV/internal/metrics"
	"github.com/heroual/MTSAV/internal/sectors"
	"github.com/heroual/MTSAV/internal/storage"
	"github.com/heroual/MTSAV/internal/websocket"
	"github.com/heroual/MTSAV/internal/workspace"
	"github.com/heroual/MTSAV/pkg/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("env", cfg.Env).
		Msg("starting MtSAV backend server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mapper, err := loadMapper(cfg.SectorMappingFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SectorMappingFile).Msg("failed to load sector mapping")
	}
	ws := workspace.New(mapper, log.Logger)
	dash := aggregator.NewDashboard(ws)

	// Create WebSocket hub
	hub := websocket.NewHub(dash, log.Logger)
	go hub.Run(ctx)

	// Refresh connected dashboards on every import or mapping change
	aggregatorService := aggregator.NewAggregator(ws, hub, log.Logger)
	go aggregatorService.Start(ctx)

	model, err := insights.NewModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Warn().Err(err).Msg("insights model unavailable, narratives disabled")
		model = nil
	}
	insightsService := insights.NewService(model, cfg.InsightsTimeout, log.Logger)
	if !insightsService.Enabled() {
		log.Warn().Msg("GEMINI_API_KEY not set, insights will return a fixed message")
	}

	archive := storage.NewArchive(ctx, cfg.Archive, log.Logger)

	authCfg := cfg.Auth()
	authenticator := auth.NewAuthenticator(authCfg, log.Logger)
	if authCfg.SkipAuth {
		log.Warn().Msg("authentication disabled (SKIP_AUTH=true)")
	} else if authCfg.Verifies() {
		if err := authenticator.InitJWKS(); err != nil {
			log.Warn().Err(err).Msg("JWKS not available, token verification will fail")
		}
	}

	handlers := &api.Handlers{
		Imports:   api.NewImportHandler(ingestion.NewParser(log.Logger), ws, cfg.MaxUploadBytes(), log.Logger),
		Dashboard: api.NewDashboardHandler(dash, ws, log.Logger),
		Sectors:   api.NewSectorHandler(ws, log.Logger),
		Insights:  api.NewInsightsHandler(dash, insightsService, log.Logger),
		Reports:   api.NewReportHandler(dash, archive, log.Logger),
	}

	r := newRouter(cfg, authenticator, handlers, websocket.NewHandler(hub, cfg, log.Logger))

	// Create HTTP server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		// Insights wait for the model
		WriteTimeout: cfg.InsightsTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop hub and aggregator
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// loadMapper reads the sector mapping file, or the built-in table when no
// file is configured
func loadMapper(path string) (*sectors.Mapper, error) {
	if path == "" {
		return sectors.NewMapper(), nil
	}
	return sectors.LoadFile(path)
}

func newRouter(cfg *config.Config, authenticator *auth.Authenticator, handlers *api.Handlers, wsHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(authenticator.Middleware)
		r.Get("/ws", wsHandler.ServeHTTP)
		r.Route("/api", handlers.Mount)
	})

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"mtsav-backend"}`)
}
