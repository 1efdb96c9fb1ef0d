package models

import (
	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
)

// Escrow statuses. Holding -> Releasing -> Released is the mutual
// dual-confirmation path; Holding -> Settling -> Settled is the negotiated
// deduction path. Both are frozen while a dispute is open. Arbitration may
// move any non-terminal escrow straight to settled.
const (
	EscrowStatusHolding   = "holding"
	EscrowStatusReleasing = "releasing"
	EscrowStatusSettling  = "settling"
	EscrowStatusReleased  = "released"
	EscrowStatusSettled   = "settled"
)

var ValidEscrowTransitions = map[string][]string{
	EscrowStatusHolding:   {EscrowStatusReleasing, EscrowStatusSettling, EscrowStatusSettled},
	EscrowStatusReleasing: {EscrowStatusReleased, EscrowStatusSettled},
	EscrowStatusSettling:  {EscrowStatusSettled},
	EscrowStatusReleased:  {},
	EscrowStatusSettled:   {},
}

func IsValidEscrowTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// SettlementRequest is the landlord's proposed deduction, embedded in the
// escrow while the negotiation is pending.
type SettlementRequest struct {
	InitiatorID     uuid.UUID `json:"initiator_id"`
	TotalDeductions int64     `json:"total_deductions"`
	DeductionCount  int       `json:"deduction_count"`
	CreatedAt       int64     `json:"created_at"`
	TenantConfirmed bool      `json:"tenant_confirmed"`
}

type Escrow struct {
	ID                uuid.UUID          `json:"id"`
	LeaseID           uuid.UUID          `json:"lease_id"`
	Amount            int64              `json:"amount"`
	Deducted          int64              `json:"deducted"`
	Status            string             `json:"status"`
	HasDispute        bool               `json:"has_dispute"`
	ReleaseToLandlord int64              `json:"release_to_landlord"`
	ReleaseToTenant   int64              `json:"release_to_tenant"`
	LandlordConfirmed bool               `json:"landlord_confirmed"`
	TenantConfirmed   bool               `json:"tenant_confirmed"`
	SettleRequest     *SettlementRequest `json:"settle_request,omitempty"`
}

// IsTerminal reports whether the escrow has reached its final state.
func (e *Escrow) IsTerminal() bool {
	return e.Status == EscrowStatusReleased || e.Status == EscrowStatusSettled
}

// InitiateRelease proposes a split of the full held amount and moves the
// escrow to releasing. The caller's confirmation is recorded and the
// counter-party's prior confirmation is always reset.
func (e *Escrow) InitiateRelease(caller uuid.UUID, lease *Lease, landlordAmount, tenantAmount int64) error {
	if !lease.IsParty(caller) {
		return apperr.Unauthorized("only a lease party may initiate release")
	}
	if e.HasDispute {
		return apperr.InvalidState("escrow is frozen by an open dispute")
	}
	if e.Status != EscrowStatusHolding {
		return apperr.InvalidState("escrow is %s, release can only be initiated while holding", e.Status)
	}
	if landlordAmount < 0 || tenantAmount < 0 {
		return apperr.Validation("release amounts must be non-negative")
	}
	if landlordAmount+tenantAmount != e.Amount {
		return apperr.Validation("split %d+%d does not equal held amount %d", landlordAmount, tenantAmount, e.Amount)
	}

	e.Status = EscrowStatusReleasing
	e.ReleaseToLandlord = landlordAmount
	e.ReleaseToTenant = tenantAmount
	e.LandlordConfirmed = caller == lease.LandlordID
	e.TenantConfirmed = caller == lease.TenantID
	return nil
}

// ConfirmRelease records the caller's confirmation of the pending split.
// A repeated confirmation by the same party is a state error, not a no-op,
// so a racing caller can detect a lost update. finalized is true once both
// parties have confirmed; the escrow is then released and the caller must
// issue the two custody transfers.
func (e *Escrow) ConfirmRelease(caller uuid.UUID, lease *Lease) (finalized bool, err error) {
	if !lease.IsParty(caller) {
		return false, apperr.Unauthorized("only a lease party may confirm release")
	}
	if e.HasDispute {
		return false, apperr.InvalidState("escrow is frozen by an open dispute")
	}
	if e.Status != EscrowStatusReleasing {
		return false, apperr.InvalidState("escrow is %s, no release to confirm", e.Status)
	}

	if caller == lease.LandlordID {
		if e.LandlordConfirmed {
			return false, apperr.InvalidState("landlord has already confirmed this proposal")
		}
		e.LandlordConfirmed = true
	} else {
		if e.TenantConfirmed {
			return false, apperr.InvalidState("tenant has already confirmed this proposal")
		}
		e.TenantConfirmed = true
	}

	if e.LandlordConfirmed && e.TenantConfirmed {
		e.Status = EscrowStatusReleased
		return true, nil
	}
	return false, nil
}

// RequestSettle stores the landlord's proposed deductions and moves the
// escrow to settling. Settlement follows the end of the tenancy, so the
// lease must no longer be active.
func (e *Escrow) RequestSettle(caller uuid.UUID, lease *Lease, totalDeductions int64, deductionCount int, now int64) error {
	if caller != lease.LandlordID {
		return apperr.Unauthorized("only the landlord may request settlement")
	}
	if lease.Status == LeaseStatusActive {
		return apperr.InvalidState("lease is still active, settlement follows termination")
	}
	if e.HasDispute {
		return apperr.InvalidState("escrow is frozen by an open dispute")
	}
	if e.Status != EscrowStatusHolding {
		return apperr.InvalidState("escrow is %s, settlement can only be requested while holding", e.Status)
	}
	if totalDeductions < 0 || totalDeductions > e.Amount {
		return apperr.Validation("deductions %d exceed held amount %d", totalDeductions, e.Amount)
	}

	e.SettleRequest = &SettlementRequest{
		InitiatorID:     caller,
		TotalDeductions: totalDeductions,
		DeductionCount:  deductionCount,
		CreatedAt:       now,
	}
	e.Status = EscrowStatusSettling
	return nil
}

// ConfirmSettle is the tenant's acceptance of the pending deduction request.
// It returns the final split; the caller issues the custody transfers.
func (e *Escrow) ConfirmSettle(caller uuid.UUID, lease *Lease) (landlordAmount, tenantAmount int64, err error) {
	if caller != lease.TenantID {
		return 0, 0, apperr.Unauthorized("only the tenant may confirm settlement")
	}
	return e.settle()
}

// ForceSettle applies the pending deduction request without tenant
// confirmation. It is the arbitrator's escape hatch for an unresponsive
// tenant; the service layer verifies the arbitrator identity and logs the
// bypass distinctly.
func (e *Escrow) ForceSettle() (landlordAmount, tenantAmount int64, err error) {
	return e.settle()
}

func (e *Escrow) settle() (landlordAmount, tenantAmount int64, err error) {
	if e.HasDispute {
		return 0, 0, apperr.InvalidState("escrow is frozen by an open dispute")
	}
	if e.Status != EscrowStatusSettling || e.SettleRequest == nil {
		return 0, 0, apperr.InvalidState("no pending settlement request")
	}
	if e.SettleRequest.TenantConfirmed {
		return 0, 0, apperr.InvalidState("settlement already confirmed")
	}

	landlordAmount = e.SettleRequest.TotalDeductions
	tenantAmount = e.Amount - landlordAmount

	e.Status = EscrowStatusSettled
	e.Deducted = landlordAmount
	e.SettleRequest.TenantConfirmed = true
	return landlordAmount, tenantAmount, nil
}

// ApplyArbitration transitions the escrow to its terminal state with the
// arbitrator's binding split, bypassing the mutual and negotiated paths,
// and clears the dispute flag.
func (e *Escrow) ApplyArbitration(landlordAmount, tenantAmount int64) error {
	if e.IsTerminal() {
		return apperr.InvalidState("escrow already %s", e.Status)
	}
	if landlordAmount < 0 || tenantAmount < 0 {
		return apperr.Validation("arbitration amounts must be non-negative")
	}
	if landlordAmount+tenantAmount != e.Amount {
		return apperr.Validation("split %d+%d does not equal held amount %d", landlordAmount, tenantAmount, e.Amount)
	}
	e.Status = EscrowStatusSettled
	e.Deducted = landlordAmount
	e.HasDispute = false
	return nil
}
