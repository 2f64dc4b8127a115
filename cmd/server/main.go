package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"saodo/internal/ai"
	"saodo/internal/config"
	"saodo/internal/database"
	"saodo/internal/events"
	"saodo/internal/handlers"
	"saodo/internal/logging"
	"saodo/internal/realtime"
	"saodo/internal/repository"
	"saodo/internal/security"
	"saodo/internal/service"
	"saodo/migrations"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", slog.Any("err", err))
		logging.Close()
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stdout, logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		Environment:  cfg.Env,
		RollbarToken: cfg.RollbarToken,
		CodeVersion:  version,
	})
	slog.SetDefault(logger)
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartupStatus()

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	startup.CompleteStep(handlers.StepDatabase)
	logger.Info("database_connected", slog.String("type", db.Dialect.Name()))

	startup.SetCurrentStep(handlers.StepMigrations)
	applied, err := db.RunMigrations(ctx, migrationsFS(cfg.MigrationsPath))
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	startup.CompleteStep(handlers.StepMigrations)
	logger.Info("migrations_completed", slog.Int("applied", len(applied)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	criteriaRepo := repository.NewCriteriaRepository(db)
	logRepo := repository.NewLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	publisher, err := events.NewPublisher(events.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, logger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	publisher.Start(context.Background())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := publisher.Stop(stopCtx); err != nil {
			logger.Warn("event_publisher_stop_failed", slog.Any("err", err))
		}
	}()

	store := realtime.NewStore(logRepo, classRepo, logger)

	// Services
	startup.SetCurrentStep(handlers.StepServices)
	tokens := security.NewTokenIssuer(cfg.SecretKey, cfg.SessionDuration)
	authService := service.NewAuthService(userRepo, tokens, logger)
	classService := service.NewClassService(classRepo, store, publisher, logger)
	criteriaService := service.NewCriteriaService(criteriaRepo, logger)
	logService := service.NewLogService(logRepo, classRepo, criteriaRepo, settingsRepo, store, publisher, cfg.SchoolYearStart, logger)
	rankingService := service.NewRankingService(store, logger)
	announcementService := service.NewAnnouncementService(repository.NewAnnouncementRepository(db))
	backupService := service.NewBackupService(db, logger)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, logger)
	if err != nil {
		return fmt.Errorf("failed to create email service: %w", err)
	}
	gemini := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	if !gemini.Available() {
		logger.Info("report_generator_disabled", slog.String("reason", "GEMINI_API_KEY not configured"))
	}
	reportService := service.NewReportService(repository.NewReportRepository(db), criteriaService, store, gemini, emailService, publisher, cfg.ReportRecipients, logger)
	startup.CompleteStep(handlers.StepServices)

	startup.SetCurrentStep(handlers.StepSeed)
	if _, err := criteriaService.SeedDefaults(ctx); err != nil {
		logger.Warn("criteria_seed_failed", slog.Any("err", err))
	}
	if created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		logger.Warn("bootstrap_admin_failed", slog.Any("err", err))
	} else if created {
		logger.Info("bootstrap_admin_created", slog.String("email", cfg.AdminEmail))
	}
	startup.CompleteStep(handlers.StepSeed)

	startup.SetCurrentStep(handlers.StepSnapshots)
	if err := store.ReloadAll(ctx); err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}
	startup.CompleteStep(handlers.StepSnapshots)

	limiter := security.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer limiter.Stop()

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email"},
			},
			UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
			AuthParams:  map[string]string{"prompt": "select_account"},
		},
	}

	// Handlers
	csrf := security.NewCSRFGenerator(cfg.SecretKey)
	middleware := handlers.NewMiddleware(authService, csrf, limiter, logger)
	routes := &handlers.Handlers{
		Middleware:    middleware,
		Startup:       startup,
		Auth:          handlers.NewAuthHandler(authService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL, logger),
		Classes:       handlers.NewClassHandler(classService, criteriaService),
		Logs:          handlers.NewLogHandler(logService),
		Rankings:      handlers.NewRankingHandler(rankingService, logger),
		Announcements: handlers.NewAnnouncementHandler(announcementService),
		Reports:       handlers.NewReportHandler(reportService),
		Admin:         handlers.NewAdminHandler(authService, logService, backupService, store, logger),
	}

	mux := http.NewServeMux()
	routes.Register(mux)

	handler := ghandlers.ProxyHeaders(
		ghandlers.RecoveryHandler(
			ghandlers.RecoveryLogger(panicLogger{logger}),
		)(middleware.Logging(mux)),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	startup.MarkReady()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_started", slog.String("addr", server.Addr), slog.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		// open ranking streams keep connections busy until the deadline
		logger.Warn("server_shutdown_forced", slog.Any("err", err))
		return server.Close()
	}
	return nil
}

// migrationsFS prefers migration files on disk and falls back to the embedded copy
func migrationsFS(dir string) fs.FS {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return os.DirFS(dir)
	}
	return migrations.FS
}

// panicLogger adapts slog to the recovery handler's logger
type panicLogger struct {
	logger *slog.Logger
}

func (p panicLogger) Println(v ...interface{}) {
	p.logger.Error("panic_recovered", slog.String("panic", fmt.Sprint(v...)))
}
