package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/perkdeck/perkdeck/internal/config"
	"github.com/perkdeck/perkdeck/internal/domain"
	"github.com/perkdeck/perkdeck/internal/handler"
	"github.com/perkdeck/perkdeck/internal/logger"
	"github.com/perkdeck/perkdeck/internal/metrics"
	"github.com/perkdeck/perkdeck/internal/repository/postgres"
	"github.com/perkdeck/perkdeck/internal/repository/sqlite"
	"github.com/perkdeck/perkdeck/internal/service"
)

func main() {
	slog.SetDefault(logger.New())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	authService := service.NewAuthService(store.Users(), cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL, cfg.PasswordMinLength)
	perkService := service.NewPerkService(store.Perks())
	loginLimiter := service.NewLoginLimiter(cfg.LoginRate, cfg.LoginBurst)

	// Seed the built-in perk catalog (idempotent).
	if err := perkService.SeedBuiltin(context.Background()); err != nil {
		slog.Error("failed to seed perk catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("perk catalog seeded")

	m := metrics.New()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, perkService, loginLimiter, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(handler.RequestLogging(handler.RequestMetrics(m, mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore selects the storage backend: PostgreSQL when DATABASE_URL is
// set, a local SQLite file otherwise.
func openStore(cfg *config.Config) (domain.Store, error) {
	if cfg.DatabaseURL != "" {
		slog.Info("using postgres backend")
		return postgres.New(cfg.DatabaseURL)
	}
	slog.Info("using sqlite backend", "path", cfg.DatabasePath)
	return sqlite.New(cfg.DatabasePath)
}
