package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/http/dto"
	"github.com/rental-marketplace/backend/internal/middleware"
	"github.com/rental-marketplace/backend/internal/repositories"
	"github.com/rental-marketplace/backend/internal/services"
	"go.uber.org/zap"
)

type LeaseHandler struct {
	leaseService *services.LeaseService
	log          *zap.Logger
}

func NewLeaseHandler(leaseService *services.LeaseService, log *zap.Logger) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService, log: log}
}

func (h *LeaseHandler) SignLease(c *fiber.Ctx) error {
	var req dto.SignLeaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	applicationID, err := uuid.Parse(req.ApplicationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid application_id"})
	}

	tenantID := middleware.GetUserID(c)
	lease, err := h.leaseService.SignLease(c.Context(), tenantID, services.SignLeaseInput{
		ApplicationID: applicationID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		PaymentDay:    req.PaymentDay,
		TotalPayments: req.TotalPayments,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: lease})
}

func (h *LeaseHandler) GetLease(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	lease, err := h.leaseService.GetLease(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: lease})
}

func (h *LeaseHandler) ListLeases(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	filter := repositories.LeaseFilter{Limit: 20}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}
	if v := c.Query("status"); v != "" {
		filter.Status = &v
	}

	switch c.Query("role") {
	case "landlord":
		filter.LandlordID = &userID
	default:
		filter.TenantID = &userID
	}

	leases, err := h.leaseService.ListLeases(c.Context(), filter)
	if err != nil {
		h.log.Error("list leases failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: leases})
}

func (h *LeaseHandler) PayRent(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	var req dto.PayRentRequest
	if err := c.BodyParser(&req); err != nil || req.PaymentIndex <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "payment_index is required"})
	}

	tenantID := middleware.GetUserID(c)
	lease, err := h.leaseService.PayRent(c.Context(), tenantID, leaseID, req.PaymentIndex)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: lease})
}

func (h *LeaseHandler) TerminateLease(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	var req dto.TerminateLeaseRequest
	if err := c.BodyParser(&req); err != nil || req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "reason is required"})
	}

	callerID := middleware.GetUserID(c)
	lease, err := h.leaseService.Terminate(c.Context(), callerID, leaseID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: lease})
}

func (h *LeaseHandler) GetLeaseEvents(c *fiber.Ctx) error {
	leaseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid lease id"})
	}

	events, err := h.leaseService.GetLeaseEvents(c.Context(), leaseID)
	if err != nil {
		h.log.Error("get lease events failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: events})
}
