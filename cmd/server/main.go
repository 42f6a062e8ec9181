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

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/patungan/internal/assistant"
	"github.com/mmynk/patungan/internal/config"
	"github.com/mmynk/patungan/internal/server"
	"github.com/mmynk/patungan/internal/share"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/internal/storage/postgres"
	"github.com/mmynk/patungan/internal/storage/sqlite"
	"github.com/mmynk/patungan/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWith(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	secret := cfg.ShareSecret
	if secret == "" {
		secret = "development-share-secret"
		slog.Warn("SHARE_SECRET not set, using a development secret")
	}
	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not set, chat assistant disabled")
	}

	handler := server.New(cfg, server.Deps{
		Store:     store,
		Assistant: assistant.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel),
		Shares:    share.NewManager(secret, cfg.ShareTTL),
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", srv.Addr, "env", cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// openStore picks PostgreSQL for postgres:// URLs and a SQLite file otherwise.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.UsesPostgres() {
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "backend", "postgres")
		return store, nil
	}

	store, err := sqlite.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DatabaseURL)
	return store, nil
}
