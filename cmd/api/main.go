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
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/tiro/internal/auth"
	"github.com/BradenHooton/tiro/internal/config"
	"github.com/BradenHooton/tiro/internal/database"
	"github.com/BradenHooton/tiro/internal/handlers"
	middlewareCustom "github.com/BradenHooton/tiro/internal/middleware"
	"github.com/BradenHooton/tiro/internal/repositories"
	"github.com/BradenHooton/tiro/internal/routes"
	"github.com/BradenHooton/tiro/internal/services"
	pkghttp "github.com/BradenHooton/tiro/pkg/http"
	pkglogger "github.com/BradenHooton/tiro/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := pkglogger.New(os.Stdout, cfg.Server.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db.Pool, logger); err != nil {
		return err
	}

	ips, err := pkghttp.NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	levelRepo := repositories.NewLevelRepository(db)
	weaponRepo := repositories.NewWeaponRepository(db)
	trainingRepo := repositories.NewTrainingSessionRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	competitionRepo := repositories.NewCompetitionRepository(db)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authenticator := auth.NewAuthenticator(tokenManager, userRepo)
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Services
	userService := services.NewUserService(userRepo, logger, auditLogger)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:      time.Duration(cfg.Auth.TimingDelayBaseMs) * time.Millisecond,
		RandomDelay:    time.Duration(cfg.Auth.TimingDelayRandomMs) * time.Millisecond,
		DelayOnSuccess: cfg.Auth.TimingDelayOnSuccess,
	})
	authService := services.NewAuthService(userRepo, tokenManager, authenticator, timingDelay, logger, auditLogger, cfg.Server.Env)
	levelService := services.NewLevelService(levelRepo, logger)
	progressService := services.NewProgressService(progressRepo, levelRepo, logger)
	trainingService := services.NewTrainingService(trainingRepo, weaponRepo, logger)
	weaponService := services.NewWeaponService(weaponRepo, logger)
	competitionService := services.NewCompetitionService(competitionRepo, logger)

	if cfg.Bootstrap.Enabled() {
		bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		created, err := userService.EnsureAdmin(bootCtx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		cancel()
		if err != nil {
			logger.Error("failed to ensure admin account", slog.Any("error", err))
		} else if !created {
			logger.Info("admin account already exists", slog.String("username", cfg.Bootstrap.AdminUsername))
		}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Production: cfg.Server.IsProduction()}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger, ips))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, routes.Handlers{
			Health:       handlers.NewHealthHandler(db, logger),
			Auth:         handlers.NewAuthHandler(authService, userService, ips),
			Progress:     handlers.NewProgressHandler(progressService, levelService),
			Training:     handlers.NewTrainingHandler(trainingService),
			Weapons:      handlers.NewWeaponHandler(weaponService),
			Competitions: handlers.NewCompetitionHandler(competitionService),
		}, routes.Deps{
			Authenticator: authenticator,
			IPs:           ips,
			AuthRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Auth.RateLimitPerMinute},
			Logger:        logger,
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-sigCtx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
