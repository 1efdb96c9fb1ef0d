package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rental-marketplace/backend/internal/http/dto"
	"github.com/rental-marketplace/backend/internal/ledger"
	"github.com/rental-marketplace/backend/internal/middleware"
	"github.com/rental-marketplace/backend/internal/services"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accounts *services.AccountService
	log      *zap.Logger
}

func NewAccountHandler(accounts *services.AccountService, log *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: log}
}

func (h *AccountHandler) Deposit(c *fiber.Ctx) error {
	var req dto.DepositRequest
	if err := c.BodyParser(&req); err != nil || req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "amount must be positive"})
	}

	userID := middleware.GetUserID(c)
	balance, err := h.accounts.Deposit(c.Context(), userID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.BalanceResponse{Account: ledger.UserAccount(userID), Balance: balance})
}

func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	balance, err := h.accounts.Balance(c.Context(), userID)
	if err != nil {
		h.log.Error("balance lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.BalanceResponse{Account: ledger.UserAccount(userID), Balance: balance})
}

func (h *AccountHandler) GetHistory(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	entries, err := h.accounts.History(c.Context(), userID, limit, offset)
	if err != nil {
		h.log.Error("ledger history failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}
