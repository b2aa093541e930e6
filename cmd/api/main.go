package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/streetlight-service/internal/api/http"
	"github.com/spec-kit/streetlight-service/internal/api/http/handlers"
	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/config"
	"github.com/spec-kit/streetlight-service/internal/events"
	"github.com/spec-kit/streetlight-service/internal/observability"
	"github.com/spec-kit/streetlight-service/internal/persistence"
	"github.com/spec-kit/streetlight-service/internal/repository"
	"github.com/spec-kit/streetlight-service/internal/seed"
	"github.com/spec-kit/streetlight-service/internal/service"
	"github.com/spec-kit/streetlight-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo      repository.UserRepository
		complaintRepo repository.ComplaintRepository
		sessionRepo   repository.SessionRepository
	)
	if pg.Enabled() {
		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		complaintRepo = repository.NewComplaintRepository(pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
		complaintRepo = repository.NewMemoryComplaintRepository()
	}
	if redis.Enabled() {
		sessionRepo = repository.NewRedisSessionRepository(redis.Client)
	} else {
		sessionRepo = repository.NewMemorySessionRepository()
	}

	if cfg.Seed.Enabled {
		file, err := seed.Load(cfg.Seed.Path)
		if err != nil {
			logger.Fatal("failed to load seed", zap.Error(err))
		}
		seeder := seed.Seeder{
			Users:      userRepo,
			Complaints: complaintRepo,
			BcryptCost: cfg.Auth.BcryptCost,
			Logger:     logger,
		}
		if err := seeder.Apply(ctx, file); err != nil {
			logger.Fatal("failed to apply seed", zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, userRepo, logger, cfg.Notification)
	var forwarder *events.AMQPForwarder
	if cfg.Broker.URL != "" {
		forwarder = events.NewAMQPForwarder(cfg.Broker.URL, cfg.Broker.Queue, logger)
		defer forwarder.Close()
	}
	worker.StartNotificationWorker(dispatcher, notificationService, forwarder)

	identityService := service.NewIdentityService(cfg.Auth, service.IdentityDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Logger:      logger,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		UserRepo:      userRepo,
		Dispatcher:    dispatcher,
	})
	authMiddleware := auth.NewAuthMiddleware(identityService)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(identityService),
		Complaints:     handlers.NewComplaintsHandler(complaintService),
		Admin:          handlers.NewAdminHandler(complaintService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
