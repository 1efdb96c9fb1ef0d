package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/config"
	"github.com/rental-marketplace/backend/internal/events"
	"github.com/rental-marketplace/backend/internal/ledger"
	"github.com/rental-marketplace/backend/internal/models"
	"github.com/rental-marketplace/backend/internal/repositories"
	"go.uber.org/zap"
)

// EscrowService owns the five settlement operations on held deposits: the
// mutual dual-confirmation release, the negotiated deduction path and the
// arbitrator's force-settle escape hatch. Every payout happens in the same
// transaction as the status flip.
type EscrowService struct {
	pool      *pgxpool.Pool
	escrows   *repositories.EscrowRepo
	leases    *repositories.LeaseRepo
	listings  *repositories.ListingRepo
	auditRepo *repositories.AuditRepo
	ledger    *ledger.Ledger
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewEscrowService(
	pool *pgxpool.Pool,
	escrows *repositories.EscrowRepo,
	leases *repositories.LeaseRepo,
	listings *repositories.ListingRepo,
	auditRepo *repositories.AuditRepo,
	lg *ledger.Ledger,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *EscrowService {
	return &EscrowService{
		pool:      pool,
		escrows:   escrows,
		leases:    leases,
		listings:  listings,
		auditRepo: auditRepo,
		ledger:    lg,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (s *EscrowService) GetByLease(ctx context.Context, leaseID uuid.UUID) (*models.Escrow, error) {
	e, err := s.escrows.GetByLeaseID(ctx, leaseID)
	if err != nil {
		return nil, apperr.NotFound("escrow for lease %s", leaseID)
	}
	return e, nil
}

func (s *EscrowService) loadForUpdate(ctx context.Context, tx pgx.Tx, leaseID uuid.UUID) (*models.Escrow, *models.Lease, error) {
	lease, err := s.leases.WithTx(tx).GetByIDForUpdate(ctx, leaseID)
	if err != nil {
		return nil, nil, apperr.NotFound("lease %s", leaseID)
	}
	escrow, err := s.escrows.WithTx(tx).GetByLeaseIDForUpdate(ctx, leaseID)
	if err != nil {
		return nil, nil, apperr.NotFound("escrow for lease %s", leaseID)
	}
	return escrow, lease, nil
}

// payout sends the final split out of custody and frees the listing for the
// next tenancy.
func (s *EscrowService) payout(ctx context.Context, tx pgx.Tx, escrow *models.Escrow, lease *models.Lease, landlordAmount, tenantAmount int64, ref string) error {
	lg := s.ledger.WithTx(tx)
	escrowAcct := ledger.EscrowAccount(escrow.ID)

	if err := lg.Transfer(ctx, escrowAcct, ledger.UserAccount(lease.LandlordID), landlordAmount, ref); err != nil {
		return err
	}
	if err := lg.Transfer(ctx, escrowAcct, ledger.UserAccount(lease.TenantID), tenantAmount, ref); err != nil {
		return err
	}

	listings := s.listings.WithTx(tx)
	listing, err := listings.GetByID(ctx, lease.ListingID)
	if err != nil {
		return err
	}
	listing.MarkAvailable()
	return listings.Update(ctx, listing)
}

// InitiateRelease proposes a full-amount split of the held deposit.
func (s *EscrowService) InitiateRelease(ctx context.Context, callerID, leaseID uuid.UUID, landlordAmount, tenantAmount int64) (*models.Escrow, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	escrow, lease, err := s.loadForUpdate(ctx, tx, leaseID)
	if err != nil {
		return nil, err
	}

	if err := escrow.InitiateRelease(callerID, lease, landlordAmount, tenantAmount); err != nil {
		return nil, err
	}
	if err := s.escrows.WithTx(tx).Update(ctx, escrow); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "user",
		Action:      "escrow_release_initiated",
		EntityType:  "escrow",
		EntityID:    &escrow.ID,
		Meta:        map[string]any{"to_landlord": landlordAmount, "to_tenant": tenantAmount},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type: events.EventReleaseInitiated,
		Payload: map[string]any{
			"lease_id":    leaseID.String(),
			"to_landlord": landlordAmount,
			"to_tenant":   tenantAmount,
		},
	})

	return escrow, nil
}

// ConfirmRelease records the counter-party's agreement; when both sides have
// confirmed, the split leaves custody in the same transaction.
func (s *EscrowService) ConfirmRelease(ctx context.Context, callerID, leaseID uuid.UUID) (*models.Escrow, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	escrow, lease, err := s.loadForUpdate(ctx, tx, leaseID)
	if err != nil {
		return nil, err
	}

	finalized, err := escrow.ConfirmRelease(callerID, lease)
	if err != nil {
		return nil, err
	}

	if finalized {
		ref := fmt.Sprintf("escrow:%s:release", escrow.ID)
		if err := s.payout(ctx, tx, escrow, lease, escrow.ReleaseToLandlord, escrow.ReleaseToTenant, ref); err != nil {
			return nil, err
		}
	}

	if err := s.escrows.WithTx(tx).Update(ctx, escrow); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "user",
		Action:      "escrow_release_confirmed",
		EntityType:  "escrow",
		EntityID:    &escrow.ID,
		Meta:        map[string]any{"finalized": finalized},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type:    events.EventReleaseConfirmed,
		Payload: map[string]any{"lease_id": leaseID.String(), "finalized": finalized},
	})
	if finalized {
		_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
			Type: events.EventEscrowReleased,
			Payload: map[string]any{
				"lease_id":    leaseID.String(),
				"to_landlord": escrow.ReleaseToLandlord,
				"to_tenant":   escrow.ReleaseToTenant,
			},
		})
		_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
			Type:    events.EventListingStatusSync,
			Payload: map[string]any{"listing_id": lease.ListingID.String(), "status": models.ListingStatusAvailable},
		})
	}

	return escrow, nil
}

// RequestSettle stores the landlord's deduction proposal after the tenancy
// has ended.
func (s *EscrowService) RequestSettle(ctx context.Context, callerID, leaseID uuid.UUID, totalDeductions int64, deductionCount int) (*models.Escrow, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	escrow, lease, err := s.loadForUpdate(ctx, tx, leaseID)
	if err != nil {
		return nil, err
	}

	if err := escrow.RequestSettle(callerID, lease, totalDeductions, deductionCount, time.Now().Unix()); err != nil {
		return nil, err
	}
	if err := s.escrows.WithTx(tx).Update(ctx, escrow); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "user",
		Action:      "escrow_settle_requested",
		EntityType:  "escrow",
		EntityID:    &escrow.ID,
		Meta:        map[string]any{"deductions": totalDeductions, "deduction_count": deductionCount},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type:    events.EventSettleRequested,
		Payload: map[string]any{"lease_id": leaseID.String(), "deductions": totalDeductions},
	})

	return escrow, nil
}

// ConfirmSettle is the tenant accepting the proposed deductions; funds leave
// custody immediately.
func (s *EscrowService) ConfirmSettle(ctx context.Context, callerID, leaseID uuid.UUID) (*models.Escrow, error) {
	return s.settle(ctx, callerID, leaseID, false)
}

// ForceSettle applies the pending deduction request without the tenant. Only
// the configured arbitrator may call it; the bypass is audited under the
// arbitrator actor type.
func (s *EscrowService) ForceSettle(ctx context.Context, callerID, leaseID uuid.UUID) (*models.Escrow, error) {
	if !s.cfg.IsArbitrator(callerID) {
		return nil, apperr.Unauthorized("only the arbitrator may force settlement")
	}
	return s.settle(ctx, callerID, leaseID, true)
}

func (s *EscrowService) settle(ctx context.Context, callerID, leaseID uuid.UUID, forced bool) (*models.Escrow, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	escrow, lease, err := s.loadForUpdate(ctx, tx, leaseID)
	if err != nil {
		return nil, err
	}

	var landlordAmount, tenantAmount int64
	if forced {
		landlordAmount, tenantAmount, err = escrow.ForceSettle()
	} else {
		landlordAmount, tenantAmount, err = escrow.ConfirmSettle(callerID, lease)
	}
	if err != nil {
		return nil, err
	}

	ref := fmt.Sprintf("escrow:%s:settle", escrow.ID)
	if forced {
		ref = fmt.Sprintf("escrow:%s:force_settle", escrow.ID)
	}
	if err := s.payout(ctx, tx, escrow, lease, landlordAmount, tenantAmount, ref); err != nil {
		return nil, err
	}
	if err := s.escrows.WithTx(tx).Update(ctx, escrow); err != nil {
		return nil, err
	}

	actorType := "user"
	action := "escrow_settled"
	if forced {
		actorType = "arbitrator"
		action = "escrow_force_settled"
	}
	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   actorType,
		Action:      action,
		EntityType:  "escrow",
		EntityID:    &escrow.ID,
		Meta:        map[string]any{"to_landlord": landlordAmount, "to_tenant": tenantAmount},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type: events.EventEscrowSettled,
		Payload: map[string]any{
			"lease_id":    leaseID.String(),
			"to_landlord": landlordAmount,
			"to_tenant":   tenantAmount,
			"forced":      forced,
		},
	})
	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type:    events.EventListingStatusSync,
		Payload: map[string]any{"listing_id": lease.ListingID.String(), "status": models.ListingStatusAvailable},
	})

	return escrow, nil
}
