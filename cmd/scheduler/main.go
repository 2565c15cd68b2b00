package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/config"
	httptransport "github.com/example/campus-scheduler/internal/http"
	"github.com/example/campus-scheduler/internal/logging"
	"github.com/example/campus-scheduler/internal/notification"
	"github.com/example/campus-scheduler/internal/persistence/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	directoryRepo := sqlite.NewDirectoryRepository(pool)
	presentationRepo := sqlite.NewPresentationRepository(pool)
	timetableRepo := sqlite.NewTimetableRepository(pool)
	groupRepo := sqlite.NewGroupRepository(pool)
	rescheduleRepo := sqlite.NewRescheduleRepository(pool)
	sequenceRepo := sqlite.NewSequenceRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	notifier := buildNotifier(cfg, logger)

	presentationService := application.NewPresentationService(presentationRepo, directoryRepo, timetableRepo, notifier, idGenerator, now, logger)
	timetableService := application.NewTimetableService(timetableRepo, groupRepo, directoryRepo, idGenerator, now, logger)
	groupService := application.NewGroupService(groupRepo, directoryRepo, sequenceRepo, idGenerator, now, logger)
	rescheduleService := application.NewRescheduleService(rescheduleRepo, presentationRepo, directoryRepo, presentationService, notifier, idGenerator, now, logger)
	directoryService := application.NewDirectoryService(directoryRepo, sequenceRepo, idGenerator, now, logger)
	authService := application.NewAuthService(userRepo, sessionRepo, nil, tokenGenerator, now, cfg.SessionTTL, logger)

	if err := bootstrapAdmin(ctx, cfg, userRepo, idGenerator, logger); err != nil {
		logger.Error("failed to bootstrap administrator account", "error", err)
		os.Exit(1)
	}

	go purgeRejectedLoop(ctx, rescheduleService, cfg.PurgeInterval, cfg.PurgeRetention, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, logger),
		Presentations: httptransport.NewPresentationHandler(presentationService, logger),
		Reschedules:   httptransport.NewRescheduleHandler(rescheduleService, logger),
		Timetables:    httptransport.NewTimetableHandler(timetableService, logger),
		Groups:        httptransport.NewGroupHandler(groupService, logger),
		Directory:     httptransport.NewDirectoryHandler(directoryService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RequireSession(authService, logger, "/login"),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("scheduler API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func buildNotifier(cfg config.Config, logger *slog.Logger) application.Notifier {
	if cfg.Notifier == "sendgrid" {
		return notification.NewSendgridNotifier(cfg.SendgridAPIKey, cfg.AppName, cfg.FromEmail, logger)
	}
	return notification.NewConsoleNotifier(logger)
}

// bootstrapAdmin creates the coordinator account on first boot so the API is
// reachable without manual database edits. Skipped when no password is
// configured or the account already exists.
func bootstrapAdmin(ctx context.Context, cfg config.Config, users *sqlite.UserRepository, idGenerator func() string, logger *slog.Logger) error {
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil
	}

	if _, err := users.GetUserCredentialsByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, application.ErrNotFound) {
		return err
	}

	hash, err := application.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = users.CreateUser(ctx, application.UserCredentials{
		User: application.User{
			ID:          idGenerator(),
			Email:       cfg.AdminEmail,
			DisplayName: "Scheduling Coordinator",
			Role:        application.RoleAdmin,
			IsAdmin:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	logger.Info("administrator account created", "email", cfg.AdminEmail)
	return nil
}

// purgeRejectedLoop sweeps rejected reschedule requests past the retention
// window until the context is cancelled.
func purgeRejectedLoop(ctx context.Context, reschedules *application.RescheduleService, interval, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := reschedules.PurgeRejected(ctx, retention); err != nil {
				logger.Error("failed to purge rejected reschedule requests", "error", err)
			}
		}
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
