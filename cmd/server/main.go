// Banking assistant fulfillment server.
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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ashureev/bankdialog/internal/api"
	"github.com/ashureev/bankdialog/internal/catalog"
	"github.com/ashureev/bankdialog/internal/config"
	"github.com/ashureev/bankdialog/internal/console"
	"github.com/ashureev/bankdialog/internal/dialog"
	"github.com/ashureev/bankdialog/internal/middleware"
	"github.com/ashureev/bankdialog/internal/store"
	"github.com/ashureev/bankdialog/internal/transcript"
	"github.com/ashureev/bankdialog/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		slog.Error("Failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "timezone", cfg.Timezone)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	if cfg.SeedPath != "" {
		fixtures, err := store.LoadFixtures(cfg.SeedPath)
		if err != nil {
			slog.Error("Failed to load fixtures", "path", cfg.SeedPath, "error", err)
			os.Exit(1)
		}
		accounts, profiles, err := store.Seed(context.Background(), repo, fixtures)
		if err != nil {
			slog.Error("Failed to seed database", "error", err)
			os.Exit(1)
		}
		slog.Info("Database seeded", "accounts", accounts, "profiles", profiles)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}

	turnLog, err := transcript.New(transcript.Config{
		Enabled:   cfg.Transcript.Enabled,
		Dir:       cfg.Transcript.Dir,
		QueueSize: cfg.Transcript.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := turnLog.Close(); closeErr != nil {
			slog.Error("Failed to close transcript logger", "error", closeErr)
		}
	}()

	engine := dialog.NewEngine(repo, cat, dialog.Options{
		StubPin:        cfg.Verification.StubPin,
		StubUserID:     cfg.Verification.StubUserID,
		MaxPinAttempts: cfg.Verification.MaxAttempts,
		Location:       loc,
		Now:            time.Now,
	})

	// Initialize handlers.
	healthHandler := api.NewHealthHandler(repo)
	fulfillmentHandler := api.NewFulfillmentHandler(engine, turnLog, cfg.ExpectedBotName)
	sm := console.NewSessionManager()

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Public routes.
	healthHandler.RegisterHealth(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.MaxRequestBodyBytes))
		fulfillmentHandler.RegisterRoutes(r)
	})

	if cfg.ConsoleEnabled {
		consoleHandler := console.NewHandler(engine, sm, turnLog, cfg.AllowedOrigins, cfg.IsDevelopment())
		r.Get("/ws/console", consoleHandler.ServeHTTP)
		r.Handle("/*", web.ConsoleHandler())
		slog.Info("Console channel enabled", "path", "/ws/console")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // websocket console sessions are long-lived
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")
	sm.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
