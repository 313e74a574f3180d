package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/lpx0007/training-management-system-sub002/internal/app"
	"github.com/lpx0007/training-management-system-sub002/internal/auth"
	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/customers"
	"github.com/lpx0007/training-management-system-sub002/internal/grants"
	"github.com/lpx0007/training-management-system-sub002/internal/observability"
	"github.com/lpx0007/training-management-system-sub002/internal/org"
	"github.com/lpx0007/training-management-system-sub002/internal/performance"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/cache"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/db"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
	"github.com/lpx0007/training-management-system-sub002/internal/training"
	"github.com/lpx0007/training-management-system-sub002/internal/users"
	"github.com/lpx0007/training-management-system-sub002/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	// Catalog cross-references are checked before anything binds a port; a
	// menu pointing at a nonexistent permission is a deploy error.
	if err := authz.ValidateCatalogs(); err != nil {
		logger.Error("catalog validation", slog.Any("error", err))
		os.Exit(1)
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "tms_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(dbpool)
	guard := authz.Middleware{Logger: logger}

	grantsRepo := grants.NewRepository(dbpool)
	grantsService := grants.NewService(grantsRepo, auditLogger, logger)
	grantsHandler := grants.NewHandler(logger, grantsService, guard)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, grantsService, sessionManager, guard).
		WithLoginLimiter(app.LoginRateLimiter(cfg))

	orgRepo := org.NewRepository(dbpool)
	transitionService := org.NewTransitionService(orgRepo, auditLogger, logger)

	customersRepo := customers.NewRepository(dbpool)
	customersService := customers.NewService(customersRepo, orgRepo)
	customersHandler := customers.NewHandler(logger, customersService, guard)

	trainingRepo := training.NewRepository(dbpool)
	trainingService := training.NewService(trainingRepo)
	trainingHandler := training.NewHandler(logger, trainingService, guard)

	performanceRepo := performance.NewRepository(dbpool)
	performanceService := performance.NewService(performanceRepo, orgRepo)
	performanceHandler := performance.NewHandler(logger, performanceService, guard)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, transitionService, grantsService, logger)
	usersHandler := users.NewHandler(logger, usersService, guard)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		CustomersHandler:   customersHandler,
		TrainingHandler:    trainingHandler,
		PerformanceHandler: performanceHandler,
		UsersHandler:       usersHandler,
		GrantsHandler:      grantsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
