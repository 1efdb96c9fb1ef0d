package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/rental-marketplace/backend/internal/config"
	"github.com/rental-marketplace/backend/internal/db"
	"github.com/rental-marketplace/backend/internal/events"
	apphttp "github.com/rental-marketplace/backend/internal/http"
	"github.com/rental-marketplace/backend/internal/http/handlers"
	"github.com/rental-marketplace/backend/internal/ledger"
	"github.com/rental-marketplace/backend/internal/repositories"
	"github.com/rental-marketplace/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	listingRepo := repositories.NewListingRepo(pool)
	applicationRepo := repositories.NewApplicationRepo(pool)
	leaseRepo := repositories.NewLeaseRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	disputeRepo := repositories.NewDisputeRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Ledger
	lg := ledger.New(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	listingService := services.NewListingService(listingRepo, auditRepo, log)
	applicationService := services.NewApplicationService(applicationRepo, listingRepo, auditRepo, cfg, log)
	leaseService := services.NewLeaseService(pool, leaseRepo, listingRepo, applicationRepo, escrowRepo, auditRepo, lg, publisher, cfg, log)
	escrowService := services.NewEscrowService(pool, escrowRepo, leaseRepo, listingRepo, auditRepo, lg, publisher, cfg, log)
	disputeService := services.NewDisputeService(pool, disputeRepo, leaseRepo, escrowRepo, listingRepo, auditRepo, lg, publisher, cfg, log)
	accountService := services.NewAccountService(lg, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, cfg, log)
	userHandler := handlers.NewUserHandler(userRepo, log)
	accountHandler := handlers.NewAccountHandler(accountService, log)
	listingHandler := handlers.NewListingHandler(listingService, log)
	applicationHandler := handlers.NewApplicationHandler(applicationService, log)
	leaseHandler := handlers.NewLeaseHandler(leaseService, log)
	escrowHandler := handlers.NewEscrowHandler(escrowService, log)
	disputeHandler := handlers.NewDisputeHandler(disputeService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, userHandler, accountHandler, listingHandler, applicationHandler, leaseHandler, escrowHandler, disputeHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
