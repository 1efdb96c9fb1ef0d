package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/http/dto"
	"github.com/rental-marketplace/backend/internal/middleware"
	"github.com/rental-marketplace/backend/internal/services"
	"go.uber.org/zap"
)

type EscrowHandler struct {
	escrowService *services.EscrowService
	log           *zap.Logger
}

func NewEscrowHandler(escrowService *services.EscrowService, log *zap.Logger) *EscrowHandler {
	return &EscrowHandler{escrowService: escrowService, log: log}
}

func (h *EscrowHandler) GetEscrow(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	escrow, err := h.escrowService.GetByLease(c.Context(), leaseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) InitiateRelease(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	var req dto.InitiateReleaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	callerID := middleware.GetUserID(c)
	escrow, err := h.escrowService.InitiateRelease(c.Context(), callerID, leaseID, req.ToLandlord, req.ToTenant)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) ConfirmRelease(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	callerID := middleware.GetUserID(c)
	escrow, err := h.escrowService.ConfirmRelease(c.Context(), callerID, leaseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) RequestSettle(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	var req dto.RequestSettleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	callerID := middleware.GetUserID(c)
	escrow, err := h.escrowService.RequestSettle(c.Context(), callerID, leaseID, req.TotalDeductions, req.DeductionCount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) ConfirmSettle(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	callerID := middleware.GetUserID(c)
	escrow, err := h.escrowService.ConfirmSettle(c.Context(), callerID, leaseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}

func (h *EscrowHandler) ForceSettle(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	callerID := middleware.GetUserID(c)
	escrow, err := h.escrowService.ForceSettle(c.Context(), callerID, leaseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: escrow})
}
