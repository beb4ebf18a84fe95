package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/pqrs-service/internal/api/http"
	"github.com/spec-kit/pqrs-service/internal/api/http/handlers"
	"github.com/spec-kit/pqrs-service/internal/auth"
	"github.com/spec-kit/pqrs-service/internal/config"
	"github.com/spec-kit/pqrs-service/internal/events"
	"github.com/spec-kit/pqrs-service/internal/observability"
	"github.com/spec-kit/pqrs-service/internal/persistence"
	"github.com/spec-kit/pqrs-service/internal/repository"
	"github.com/spec-kit/pqrs-service/internal/service"
	"github.com/spec-kit/pqrs-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	caseRepo := repository.NewCaseRepository(pool)
	historyRepo := repository.NewCaseHistoryRepository(pool)
	responseRepo := repository.NewCaseResponseRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	blacklist := auth.NewTokenBlacklist(redis.Client)

	caseService := service.NewCaseService(*cfg, service.CaseDependencies{
		CaseRepo:     caseRepo,
		HistoryRepo:  historyRepo,
		ResponseRepo: responseRepo,
		Dispatcher:   dispatcher,
	})
	statsService := service.NewStatsService(statsRepo)
	authService := service.NewAuthService(cfg.Auth, staffRepo, resetRepo, tokenManager, blacklist, logger)
	staffService := service.NewStaffService(cfg.Auth, staffRepo)

	emailSender := service.NewLogEmailSender(logger)
	notificationService := service.NewNotificationService(cfg.Notification, notificationRepo, responseRepo, emailSender, logger)
	worker.StartNotificationWorker(ctx, dispatcher, notificationService)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, blacklist, staffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Cases:          handlers.NewCasesHandler(caseService),
		StaffCases:     handlers.NewStaffCasesHandler(caseService),
		Dashboard:      handlers.NewDashboardHandler(statsService),
		Staff:          handlers.NewStaffHandler(authService, staffService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
