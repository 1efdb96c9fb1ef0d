package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
)

func TestNewDispute(t *testing.T) {
	lease := activeLease()
	e := holdingEscrow(lease)

	if _, err := NewDispute(lease, e, uuid.New(), DisputeReasonDamage); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("stranger dispute: got %v", err)
	}
	if _, err := NewDispute(lease, e, lease.TenantID, "price"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad reason: got %v", err)
	}

	d, err := NewDispute(lease, e, lease.TenantID, DisputeReasonDeposit)
	if err != nil {
		t.Fatalf("raise: %v", err)
	}
	if d.Status != DisputeStatusOpen || d.Sequence != 1 {
		t.Errorf("status=%s sequence=%d", d.Status, d.Sequence)
	}
	if !e.HasDispute || lease.DisputeCount != 1 {
		t.Errorf("hasDispute=%v count=%d", e.HasDispute, lease.DisputeCount)
	}

	// Only one open dispute per escrow.
	if _, err := NewDispute(lease, e, lease.LandlordID, DisputeReasonDamage); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second dispute: got %v", err)
	}
}

func TestNewDisputeOnTerminalEscrow(t *testing.T) {
	lease := activeLease()
	e := holdingEscrow(lease)
	e.Status = EscrowStatusReleased

	if _, err := NewDispute(lease, e, lease.TenantID, DisputeReasonOther); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("dispute on released escrow: got %v", err)
	}
}

func TestDisputeResolve(t *testing.T) {
	lease := activeLease()
	e := holdingEscrow(lease)

	d, err := NewDispute(lease, e, lease.LandlordID, DisputeReasonDamage)
	if err != nil {
		t.Fatalf("raise: %v", err)
	}

	now := time.Now()

	// Scenario D: 900 held, 900+100 does not conserve and is rejected.
	if err := d.Resolve(e, 900, 100, "damage exceeds deposit", now); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("non-conserving split: got %v", err)
	}
	if d.Status != DisputeStatusOpen || !e.HasDispute {
		t.Fatal("rejected resolution mutated dispute or escrow")
	}

	if err := d.Resolve(e, 900, 0, "full deposit to landlord", now); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if d.Status != DisputeStatusResolved || d.LandlordAmount == nil || *d.LandlordAmount != 900 {
		t.Errorf("status=%s landlordAmount=%v", d.Status, d.LandlordAmount)
	}
	if e.Status != EscrowStatusSettled || e.HasDispute {
		t.Errorf("escrow status=%s hasDispute=%v", e.Status, e.HasDispute)
	}

	// Terminal disputes stay terminal.
	if err := d.Resolve(e, 0, 900, "second thoughts", now); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("re-resolve: got %v", err)
	}
}

func TestDisputeFreezesMidReleaseEscrow(t *testing.T) {
	lease := activeLease()
	e := holdingEscrow(lease)

	if err := e.InitiateRelease(lease.TenantID, lease, 600, 300); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	// A releasing escrow is not terminal, so it can still be disputed.
	d, err := NewDispute(lease, e, lease.LandlordID, DisputeReasonDeposit)
	if err != nil {
		t.Fatalf("raise on releasing escrow: %v", err)
	}

	// Arbitration overrides the pending split.
	if err := d.Resolve(e, 450, 450, "split evenly", time.Now()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if e.Status != EscrowStatusSettled {
		t.Errorf("status = %s, want settled", e.Status)
	}
}
