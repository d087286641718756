package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/cmdbase/internal/server/handlers"
	"github.com/iudanet/cmdbase/internal/server/middleware"
	"github.com/iudanet/cmdbase/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", envOr("CMDBASE_ADDR", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", envOr("CMDBASE_DB", "cmdbase.db"), "Path to SQLite database")
	secret := flag.String("secret", os.Getenv("CMDBASE_SECRET"), "Session token signing secret")
	sessionTTL := flag.Duration("session-ttl", 24*time.Hour, "Session lifetime")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger, *addr, *dbPath, *secret, *sessionTTL); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath, secret string, sessionTTL time.Duration) error {
	if secret == "" {
		return errors.New("session secret is required (-secret or CMDBASE_SECRET)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	cfg := handlers.SessionConfig{
		Secret:     []byte(secret),
		SessionTTL: sessionTTL,
	}

	authHandler := handlers.NewAuthHandler(logger, store, store, store, cfg)
	registryHandler := handlers.NewRegistryHandler(logger, store)
	departmentHandler := handlers.NewDepartmentHandler(logger, store)
	healthHandler := handlers.NewHealthHandler(logger, store, Version)

	// Фоновая чистка истекших сессий
	go cleanupSessions(ctx, logger, store)

	authRequired := middleware.AuthMiddleware(logger, cfg, store, store)
	// Более жесткий лимит на эндпоинты с паролем против перебора
	loginLimit := middleware.RateLimitMiddleware(10, time.Minute, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("POST /signup", loginLimit(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /logout", authRequired(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("GET /commands", authRequired(http.HandlerFunc(registryHandler.ListCommands)))
	mux.Handle("POST /commands/add", authRequired(http.HandlerFunc(registryHandler.AddCommand)))
	mux.Handle("DELETE /commands/remove", authRequired(http.HandlerFunc(registryHandler.RemoveCommand)))
	mux.Handle("PUT /commands/update", authRequired(http.HandlerFunc(registryHandler.UpdateCommand)))
	mux.Handle("POST /commands/touch", authRequired(http.HandlerFunc(registryHandler.TouchCommand)))
	mux.Handle("POST /commands/import", authRequired(http.HandlerFunc(registryHandler.ImportCommands)))

	mux.Handle("GET /devices", authRequired(http.HandlerFunc(registryHandler.ListDevices)))
	mux.Handle("POST /devices/add", authRequired(http.HandlerFunc(registryHandler.AddDevice)))
	mux.Handle("DELETE /devices/remove", authRequired(http.HandlerFunc(registryHandler.RemoveDevice)))
	mux.Handle("PUT /devices/update", authRequired(http.HandlerFunc(registryHandler.UpdateDevice)))
	mux.Handle("POST /devices/import", authRequired(http.HandlerFunc(registryHandler.ImportDevices)))

	mux.Handle("GET /departments", authRequired(http.HandlerFunc(departmentHandler.Get)))
	mux.Handle("POST /departments/create", authRequired(http.HandlerFunc(departmentHandler.Create)))
	mux.Handle("POST /departments/managers/add", authRequired(http.HandlerFunc(departmentHandler.AddManager)))
	mux.Handle("POST /departments/teamleads/add", authRequired(http.HandlerFunc(departmentHandler.AddTeamLead)))

	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(300, time.Minute, logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("db", dbPath),
			slog.String("version", Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

// cleanupSessions периодически удаляет истекшие сессии из хранилища
func cleanupSessions(ctx context.Context, logger *slog.Logger, store *sqlite.Storage) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.DeleteExpiredSessions(ctx)
			if err != nil {
				logger.Error("session cleanup failed", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				logger.Info("expired sessions removed", slog.Int("count", deleted))
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printVersion() {
	fmt.Printf("cmdbase server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
