package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/commerce-service/internal/api/http"
	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/observability"
	"github.com/spec-kit/commerce-service/internal/persistence"
	"github.com/spec-kit/commerce-service/internal/repository"
	"github.com/spec-kit/commerce-service/internal/service"
	"github.com/spec-kit/commerce-service/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	keyRepo := repository.NewAPIKeyRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	userService := service.NewUserService(userRepo)
	keyService := service.NewAPIKeyService(keyRepo, dispatcher, logger, cfg.APIKey.Prefix)
	productService := service.NewProductService(productRepo, redis, cfg.Redis.CatalogCacheTTL, logger)
	categoryService := service.NewCategoryService(categoryRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, dispatcher)

	sessionAuth := auth.NewSessionAuth(authService.TokenManager(), userRepo, logger)
	keyAuth := auth.NewKeyAuth(keyRepo, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:        handlers.NewAuthHandler(authService),
		Users:       handlers.NewUsersHandler(userService),
		Products:    handlers.NewProductsHandler(productService),
		Categories:  handlers.NewCategoriesHandler(categoryService),
		Orders:      handlers.NewOrdersHandler(orderService),
		APIKeys:     handlers.NewAPIKeysHandler(keyService),
		Catalog:     handlers.NewCatalogHandler(productService),
		SessionAuth: sessionAuth,
		KeyAuth:     keyAuth,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
