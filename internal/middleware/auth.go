package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/auth"
	"github.com/rental-marketplace/backend/internal/config"
	"github.com/rental-marketplace/backend/internal/rbac"
	"go.uber.org/zap"
)

const (
	CtxUserID    = "user_id"
	CtxAttestRef = "attest_ref"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxUserID, claims.UserID)
		c.Locals(CtxAttestRef, claims.AttestRef)

		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func GetAttestRef(c *fiber.Ctx) string {
	ref, _ := c.Locals(CtxAttestRef).(string)
	return ref
}

// RequirePermission gates a route on the caller holding the given permission.
// Arbitrator is the only role assigned globally (by config); landlord and
// tenant are relative to the lease, so their permissions are enforced by the
// domain checks inside the services and pass through here.
func RequirePermission(cfg *config.Config, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.IsArbitrationOperation(permission) {
			return c.Next()
		}
		if !cfg.IsArbitrator(GetUserID(c)) || !rbac.HasPermission(rbac.RoleArbitrator, permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "arbitrator access required"})
		}
		return c.Next()
	}
}
