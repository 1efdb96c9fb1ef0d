package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
)

// Dispute statuses
const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

// Dispute reasons
const (
	DisputeReasonDeposit = "deposit"
	DisputeReasonDamage  = "damage"
	DisputeReasonOther   = "other"
)

func IsValidDisputeReason(reason string) bool {
	switch reason {
	case DisputeReasonDeposit, DisputeReasonDamage, DisputeReasonOther:
		return true
	}
	return false
}

type Dispute struct {
	ID             uuid.UUID `json:"id"`
	LeaseID        uuid.UUID `json:"lease_id"`
	Sequence       int       `json:"sequence"` // lease.dispute_count at raise time
	InitiatorID    uuid.UUID `json:"initiator_id"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	Resolution     *string   `json:"resolution,omitempty"`
	LandlordAmount *int64    `json:"landlord_amount,omitempty"`
	TenantAmount   *int64    `json:"tenant_amount,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// NewDispute raises a dispute against a lease/escrow pair, freezing the
// escrow. Only one open dispute is allowed per escrow; the escrow's dispute
// flag is the gate. The lease's dispute counter is incremented as a
// disambiguating sequence for historical disputes.
func NewDispute(lease *Lease, escrow *Escrow, initiator uuid.UUID, reason string) (*Dispute, error) {
	if !lease.IsParty(initiator) {
		return nil, apperr.Unauthorized("only a lease party may raise a dispute")
	}
	if !IsValidDisputeReason(reason) {
		return nil, apperr.Validation("invalid dispute reason %q", reason)
	}
	if escrow.IsTerminal() {
		return nil, apperr.InvalidState("escrow is already %s, nothing left to dispute", escrow.Status)
	}
	if escrow.HasDispute {
		return nil, apperr.InvalidState("a dispute is already open for this escrow")
	}

	lease.DisputeCount++
	escrow.HasDispute = true

	return &Dispute{
		LeaseID:     lease.ID,
		Sequence:    lease.DisputeCount,
		InitiatorID: initiator,
		Reason:      reason,
		Status:      DisputeStatusOpen,
	}, nil
}

// Resolve applies the arbitrator's binding split to the dispute and its
// escrow. The split must cover the escrow's full held amount exactly.
func (d *Dispute) Resolve(escrow *Escrow, landlordAmount, tenantAmount int64, note string, now time.Time) error {
	if d.Status != DisputeStatusOpen {
		return apperr.InvalidState("dispute is already %s", d.Status)
	}
	if err := escrow.ApplyArbitration(landlordAmount, tenantAmount); err != nil {
		return err
	}

	d.Status = DisputeStatusResolved
	d.Resolution = &note
	d.LandlordAmount = &landlordAmount
	d.TenantAmount = &tenantAmount
	d.ResolvedAt = &now
	return nil
}
