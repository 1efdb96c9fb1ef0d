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

type ApplicationHandler struct {
	appService *services.ApplicationService
	log        *zap.Logger
}

func NewApplicationHandler(appService *services.ApplicationService, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{appService: appService, log: log}
}

func (h *ApplicationHandler) Apply(c *fiber.Ctx) error {
	var req dto.ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid listing_id"})
	}

	applicantID := middleware.GetUserID(c)
	app, err := h.appService.Apply(c.Context(), applicantID, services.ApplyInput{
		ListingID:       listingID,
		TenantAttestRef: req.TenantAttestRef,
		OfferRent:       req.OfferRent,
		OfferDeposit:    req.OfferDeposit,
		Message:         req.Message,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: app})
}

func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid application id"})
	}

	app, err := h.appService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: app})
}

func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	filter := repositories.ApplicationFilter{Limit: 20}

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
	if v := c.Query("listing_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.ListingID = &id
		}
	}
	if c.Query("mine") == "true" {
		applicantID := middleware.GetUserID(c)
		filter.ApplicantID = &applicantID
	}

	apps, err := h.appService.List(c.Context(), filter)
	if err != nil {
		h.log.Error("list applications failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: apps})
}

func (h *ApplicationHandler) CounterOffer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid application id"})
	}

	var req dto.CounterOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	actorID := middleware.GetUserID(c)
	app, err := h.appService.Counter(c.Context(), actorID, id, req.OfferRent, req.OfferDeposit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: app})
}

func (h *ApplicationHandler) ApproveApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid application id"})
	}

	ownerID := middleware.GetUserID(c)
	app, err := h.appService.Approve(c.Context(), ownerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: app})
}

func (h *ApplicationHandler) RejectApplication(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid application id"})
	}

	ownerID := middleware.GetUserID(c)
	app, err := h.appService.Reject(c.Context(), ownerID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: app})
}
