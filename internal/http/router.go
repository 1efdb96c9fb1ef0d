package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rental-marketplace/backend/internal/config"
	"github.com/rental-marketplace/backend/internal/http/handlers"
	"github.com/rental-marketplace/backend/internal/middleware"
	"github.com/rental-marketplace/backend/internal/rbac"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	accountHandler *handlers.AccountHandler,
	listingHandler *handlers.ListingHandler,
	applicationHandler *handlers.ApplicationHandler,
	leaseHandler *handlers.LeaseHandler,
	escrowHandler *handlers.EscrowHandler,
	disputeHandler *handlers.DisputeHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public, IP-limited)
	api.Post("/auth/attest", middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute), authHandler.AttestAuth)

	// Protected endpoints, limited per authenticated caller
	protected := api.Group("",
		middleware.AuthMiddleware(cfg, log),
		middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute),
	)

	// User
	protected.Get("/me", userHandler.GetMe)

	// Account / ledger
	protected.Post("/me/account/deposit", accountHandler.Deposit)
	protected.Get("/me/account/balance", accountHandler.GetBalance)
	protected.Get("/me/account/history", accountHandler.GetHistory)

	// Listings
	protected.Post("/listings", listingHandler.CreateListing)
	protected.Get("/listings", listingHandler.ListListings)
	protected.Get("/listings/:id", listingHandler.GetListing)
	protected.Put("/listings/:id", listingHandler.UpdateListing)
	protected.Post("/listings/:id/delist", listingHandler.DelistListing)

	// Applications
	protected.Post("/applications", applicationHandler.Apply)
	protected.Get("/applications", applicationHandler.ListApplications)
	protected.Get("/applications/:id", applicationHandler.GetApplication)
	protected.Post("/applications/:id/counter", applicationHandler.CounterOffer)
	protected.Post("/applications/:id/approve", applicationHandler.ApproveApplication)
	protected.Post("/applications/:id/reject", applicationHandler.RejectApplication)

	// Leases
	protected.Post("/leases", leaseHandler.SignLease)
	protected.Get("/leases", leaseHandler.ListLeases)
	protected.Get("/leases/:id", leaseHandler.GetLease)
	protected.Post("/leases/:id/pay", leaseHandler.PayRent)
	protected.Post("/leases/:id/terminate", leaseHandler.TerminateLease)
	protected.Get("/leases/:id/events", leaseHandler.GetLeaseEvents)

	// Escrow settlement
	protected.Get("/leases/:id/escrow", escrowHandler.GetEscrow)
	protected.Post("/leases/:id/escrow/release", escrowHandler.InitiateRelease)
	protected.Post("/leases/:id/escrow/release/confirm", escrowHandler.ConfirmRelease)
	protected.Post("/leases/:id/escrow/settle", escrowHandler.RequestSettle)
	protected.Post("/leases/:id/escrow/settle/confirm", escrowHandler.ConfirmSettle)

	// Disputes
	protected.Post("/leases/:id/disputes", disputeHandler.RaiseDispute)
	protected.Get("/leases/:id/disputes", disputeHandler.ListLeaseDisputes)
	protected.Get("/disputes/:id", disputeHandler.GetDispute)

	// Arbitration
	protected.Post("/leases/:id/escrow/settle/force",
		middleware.RequirePermission(cfg, rbac.PermForceSettle), escrowHandler.ForceSettle)
	protected.Post("/disputes/:id/resolve",
		middleware.RequirePermission(cfg, rbac.PermResolveDispute), disputeHandler.ResolveDispute)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
