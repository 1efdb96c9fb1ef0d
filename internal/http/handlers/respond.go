package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/http/dto"
)

// statusFor maps the service error kinds onto HTTP statuses. Unrecognized
// errors are treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, apperr.ErrInvalidState):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrPolicyLimit):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrTransfer):
		return fiber.StatusBadGateway
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: msg})
}
