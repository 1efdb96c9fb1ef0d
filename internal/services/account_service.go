package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/ledger"
	"go.uber.org/zap"
)

// AccountService exposes the funding surface of the ledger: users top up
// their account before signing or paying, and read back balances and history.
type AccountService struct {
	ledger *ledger.Ledger
	log    *zap.Logger
}

func NewAccountService(lg *ledger.Ledger, log *zap.Logger) *AccountService {
	return &AccountService{ledger: lg, log: log}
}

func (s *AccountService) Deposit(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	acct := ledger.UserAccount(userID)
	ref := fmt.Sprintf("user:%s:topup", userID)
	if err := s.ledger.Deposit(ctx, acct, amount, ref); err != nil {
		return 0, err
	}
	return s.ledger.Balance(ctx, acct)
}

func (s *AccountService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.ledger.Balance(ctx, ledger.UserAccount(userID))
}

func (s *AccountService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]ledger.Entry, error) {
	return s.ledger.History(ctx, ledger.UserAccount(userID), limit, offset)
}
