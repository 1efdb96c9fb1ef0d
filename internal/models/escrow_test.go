package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
)

func holdingEscrow(lease *Lease) *Escrow {
	return &Escrow{
		ID:      uuid.New(),
		LeaseID: lease.ID,
		Amount:  900,
		Status:  EscrowStatusHolding,
	}
}

func TestIsValidEscrowTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{EscrowStatusHolding, EscrowStatusReleasing, true},
		{EscrowStatusHolding, EscrowStatusSettling, true},
		{EscrowStatusHolding, EscrowStatusSettled, true}, // arbitration
		{EscrowStatusReleasing, EscrowStatusReleased, true},
		{EscrowStatusSettling, EscrowStatusSettled, true},
		{EscrowStatusReleased, EscrowStatusHolding, false},
		{EscrowStatusSettled, EscrowStatusHolding, false},
		{EscrowStatusReleased, EscrowStatusSettled, false},
		{EscrowStatusHolding, EscrowStatusReleased, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidEscrowTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidEscrowTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestInitiateReleaseValidation(t *testing.T) {
	lease := activeLease()

	tests := []struct {
		name     string
		caller   uuid.UUID
		landlord int64
		tenant   int64
		kind     error
	}{
		{"stranger", uuid.New(), 600, 300, apperr.ErrUnauthorized},
		{"split short", lease.TenantID, 600, 200, apperr.ErrValidation},
		{"split over", lease.TenantID, 600, 400, apperr.ErrValidation},
		{"negative amount", lease.TenantID, -100, 1000, apperr.ErrValidation},
		{"exact split", lease.TenantID, 600, 300, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := holdingEscrow(lease)
			err := e.InitiateRelease(tt.caller, lease, tt.landlord, tt.tenant)
			if tt.kind == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if e.Status != EscrowStatusReleasing || !e.TenantConfirmed || e.LandlordConfirmed {
					t.Errorf("status=%s landlord=%v tenant=%v", e.Status, e.LandlordConfirmed, e.TenantConfirmed)
				}
				return
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("got %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestDualConfirmationRelease(t *testing.T) {
	lease := activeLease()
	e := holdingEscrow(lease)

	// Scenario B: tenant proposes 600/300, landlord confirms.
	if err := e.InitiateRelease(lease.TenantID, lease, 600, 300); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	// Initiator cannot confirm their own proposal twice.
	if _, err := e.ConfirmRelease(lease.TenantID, lease); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("self re-confirm: got %v, want state error", err)
	}

	finalized, err := e.ConfirmRelease(lease.LandlordID, lease)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !finalized {
		t.Fatal("both parties confirmed but release not finalized")
	}
	if e.Status != EscrowStatusReleased {
		t.Errorf("status = %s, want released", e.Status)
	}
	if e.ReleaseToLandlord+e.ReleaseToTenant != e.Amount {
		t.Errorf("conservation violated: %d+%d != %d", e.ReleaseToLandlord, e.ReleaseToTenant, e.Amount)
	}

	// No double release.
	if _, err := e.ConfirmRelease(lease.LandlordID, lease); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("confirm after release: got %v, want state error", err)
	}
	if err := e.InitiateRelease(lease.TenantID, lease, 900, 0); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("initiate after release: got %v, want state error", err)
	}
}

func TestInitiateReleaseResetsCounterparty(t *testing.T) {
	lease := activeLease()
	e := holdingEscrow(lease)

	if err := e.InitiateRelease(lease.LandlordID, lease, 900, 0); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if !e.LandlordConfirmed || e.TenantConfirmed {
		t.Fatal("initiator flag not set, or counter-party not reset")
	}

	// Waiting on the tenant is legitimate partial progress, not an error.
	finalized, err := e.ConfirmRelease(lease.TenantID, lease)
	if err != nil {
		t.Fatalf("tenant confirm: %v", err)
	}
	if !finalized {
		t.Fatal("expected finalization after second confirmation")
	}
}

func TestSettlementFlow(t *testing.T) {
	lease := activeLease()
	reason := TerminationMutual
	lease.Status = LeaseStatusTerminated
	lease.TerminationReason = &reason

	e := holdingEscrow(lease)

	// Deductions above the held amount are rejected.
	if err := e.RequestSettle(lease.LandlordID, lease, 1000, 2, 1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("oversized deduction: got %v", err)
	}
	// Only the landlord proposes deductions.
	if err := e.RequestSettle(lease.TenantID, lease, 200, 2, 1); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("tenant request: got %v", err)
	}

	if err := e.RequestSettle(lease.LandlordID, lease, 200, 2, 1); err != nil {
		t.Fatalf("request: %v", err)
	}
	if e.Status != EscrowStatusSettling || e.SettleRequest == nil {
		t.Fatalf("status=%s request=%v", e.Status, e.SettleRequest)
	}

	// Only one pending request at a time.
	if err := e.RequestSettle(lease.LandlordID, lease, 300, 1, 2); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("second request: got %v", err)
	}

	landlordAmt, tenantAmt, err := e.ConfirmSettle(lease.TenantID, lease)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if landlordAmt != 200 || tenantAmt != 700 {
		t.Errorf("split = (%d, %d), want (200, 700)", landlordAmt, tenantAmt)
	}
	if landlordAmt+tenantAmt != e.Amount {
		t.Errorf("conservation violated: %d+%d != %d", landlordAmt, tenantAmt, e.Amount)
	}
	if e.Status != EscrowStatusSettled || e.Deducted != 200 {
		t.Errorf("status=%s deducted=%d", e.Status, e.Deducted)
	}

	// Already confirmed.
	if _, _, err := e.ConfirmSettle(lease.TenantID, lease); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("double confirm: got %v", err)
	}
}

func TestForceSettle(t *testing.T) {
	lease := activeLease()
	lease.Status = LeaseStatusTerminated

	e := holdingEscrow(lease)

	// Scenario C: 200 deducted from 900, tenant unresponsive.
	if err := e.RequestSettle(lease.LandlordID, lease, 200, 1, 1); err != nil {
		t.Fatalf("request: %v", err)
	}

	landlordAmt, tenantAmt, err := e.ForceSettle()
	if err != nil {
		t.Fatalf("force settle: %v", err)
	}
	if landlordAmt != 200 || tenantAmt != 700 {
		t.Errorf("split = (%d, %d), want (200, 700)", landlordAmt, tenantAmt)
	}
	if e.Status != EscrowStatusSettled {
		t.Errorf("status = %s, want settled", e.Status)
	}
}

func TestSettleRequiresLeaseEnded(t *testing.T) {
	lease := activeLease() // still active
	e := holdingEscrow(lease)

	if err := e.RequestSettle(lease.LandlordID, lease, 200, 1, 1); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("settle on active lease: got %v", err)
	}
}

func TestDisputeFreezesEverySettlementPath(t *testing.T) {
	lease := activeLease()
	lease.Status = LeaseStatusTerminated

	freeze := func() *Escrow {
		e := holdingEscrow(lease)
		e.HasDispute = true
		return e
	}

	if err := freeze().InitiateRelease(lease.TenantID, lease, 600, 300); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("initiate_release under dispute: got %v", err)
	}
	if err := freeze().RequestSettle(lease.LandlordID, lease, 200, 1, 1); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("request_settle under dispute: got %v", err)
	}

	// Releasing escrow frozen mid-flight.
	e := holdingEscrow(lease)
	if err := e.InitiateRelease(lease.TenantID, lease, 600, 300); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	e.HasDispute = true
	if _, err := e.ConfirmRelease(lease.LandlordID, lease); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("confirm_release under dispute: got %v", err)
	}

	// Settling escrow frozen mid-flight.
	e = holdingEscrow(lease)
	if err := e.RequestSettle(lease.LandlordID, lease, 200, 1, 1); err != nil {
		t.Fatalf("request: %v", err)
	}
	e.HasDispute = true
	if _, _, err := e.ConfirmSettle(lease.TenantID, lease); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("confirm_settle under dispute: got %v", err)
	}
	if _, _, err := e.ForceSettle(); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("force_settle under dispute: got %v", err)
	}
}

func TestApplyArbitrationConservation(t *testing.T) {
	lease := activeLease()

	tests := []struct {
		name     string
		landlord int64
		tenant   int64
		wantErr  bool
	}{
		{"full to landlord", 900, 0, false},
		{"full to tenant", 0, 900, false},
		{"even split", 450, 450, false},
		{"over", 900, 100, true},
		{"short", 400, 400, true},
		{"negative", -100, 1000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := holdingEscrow(lease)
			e.HasDispute = true
			err := e.ApplyArbitration(tt.landlord, tt.tenant)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Fatalf("got %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Status != EscrowStatusSettled || e.HasDispute {
				t.Errorf("status=%s hasDispute=%v", e.Status, e.HasDispute)
			}
			if e.Deducted != tt.landlord {
				t.Errorf("deducted = %d, want %d", e.Deducted, tt.landlord)
			}
		})
	}
}
