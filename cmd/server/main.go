package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mkarpin/clubsite/internal/club"
	"github.com/mkarpin/clubsite/internal/config"
	"github.com/mkarpin/clubsite/internal/logging"
	"github.com/mkarpin/clubsite/internal/sheets"
	"github.com/mkarpin/clubsite/internal/store"
	"github.com/mkarpin/clubsite/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"mongo_database", cfg.Mongo.Database,
		"uploads_dir", cfg.Upload.Dir,
		"admin_gate", cfg.Security.AdminPassword != "",
	)
	if cfg.Security.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD is not set, admin endpoints will reject all requests")
	}

	// Connect to the document store
	ctx := context.Background()
	db, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		slog.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		slog.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to mongodb", "database", cfg.Mongo.Database)

	// Create the spreadsheet fetcher and service
	fetcher := sheets.NewClient(cfg.Sheets.FetchTimeout)
	service, err := club.NewService(db, fetcher, cfg.Upload.Dir)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	// Create server with config
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	// Start server (uses addr from config internally)
	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
