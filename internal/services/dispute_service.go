package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/config"
	"github.com/rental-marketplace/backend/internal/events"
	"github.com/rental-marketplace/backend/internal/ledger"
	"github.com/rental-marketplace/backend/internal/models"
	"github.com/rental-marketplace/backend/internal/repositories"
	"go.uber.org/zap"
)

type DisputeService struct {
	pool      *pgxpool.Pool
	disputes  *repositories.DisputeRepo
	leases    *repositories.LeaseRepo
	escrows   *repositories.EscrowRepo
	listings  *repositories.ListingRepo
	auditRepo *repositories.AuditRepo
	ledger    *ledger.Ledger
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewDisputeService(
	pool *pgxpool.Pool,
	disputes *repositories.DisputeRepo,
	leases *repositories.LeaseRepo,
	escrows *repositories.EscrowRepo,
	listings *repositories.ListingRepo,
	auditRepo *repositories.AuditRepo,
	lg *ledger.Ledger,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *DisputeService {
	return &DisputeService{
		pool:      pool,
		disputes:  disputes,
		leases:    leases,
		escrows:   escrows,
		listings:  listings,
		auditRepo: auditRepo,
		ledger:    lg,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

// Raise opens a dispute on a lease's escrow, freezing every settlement path
// until the arbitrator rules.
func (s *DisputeService) Raise(ctx context.Context, callerID, leaseID uuid.UUID, reason string) (*models.Dispute, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	leases := s.leases.WithTx(tx)
	lease, err := leases.GetByIDForUpdate(ctx, leaseID)
	if err != nil {
		return nil, apperr.NotFound("lease %s", leaseID)
	}
	escrows := s.escrows.WithTx(tx)
	escrow, err := escrows.GetByLeaseIDForUpdate(ctx, leaseID)
	if err != nil {
		return nil, apperr.NotFound("escrow for lease %s", leaseID)
	}

	dispute, err := models.NewDispute(lease, escrow, callerID, reason)
	if err != nil {
		return nil, err
	}

	if err := s.disputes.WithTx(tx).Create(ctx, dispute); err != nil {
		return nil, err
	}
	if err := leases.Update(ctx, lease); err != nil {
		return nil, err
	}
	if err := escrows.Update(ctx, escrow); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "user",
		Action:      "dispute_raised",
		EntityType:  "dispute",
		EntityID:    &dispute.ID,
		Meta:        map[string]any{"lease_id": leaseID.String(), "reason": reason},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamDispute, events.Event{
		Type: events.EventDisputeRaised,
		Payload: map[string]any{
			"dispute_id": dispute.ID.String(),
			"lease_id":   leaseID.String(),
			"reason":     reason,
		},
	})

	return dispute, nil
}

// Resolve applies the arbitrator's binding split. The escrow pays out, the
// dispute closes and the listing frees up, all atomically.
func (s *DisputeService) Resolve(ctx context.Context, callerID, disputeID uuid.UUID, landlordAmount, tenantAmount int64, note string) (*models.Dispute, error) {
	if !s.cfg.IsArbitrator(callerID) {
		return nil, apperr.Unauthorized("only the arbitrator may resolve disputes")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	disputes := s.disputes.WithTx(tx)
	dispute, err := disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, apperr.NotFound("dispute %s", disputeID)
	}

	leases := s.leases.WithTx(tx)
	lease, err := leases.GetByIDForUpdate(ctx, dispute.LeaseID)
	if err != nil {
		return nil, apperr.NotFound("lease %s", dispute.LeaseID)
	}
	escrows := s.escrows.WithTx(tx)
	escrow, err := escrows.GetByLeaseIDForUpdate(ctx, dispute.LeaseID)
	if err != nil {
		return nil, apperr.NotFound("escrow for lease %s", dispute.LeaseID)
	}

	if err := dispute.Resolve(escrow, landlordAmount, tenantAmount, note, time.Now()); err != nil {
		return nil, err
	}

	lg := s.ledger.WithTx(tx)
	escrowAcct := ledger.EscrowAccount(escrow.ID)
	ref := fmt.Sprintf("dispute:%s:resolution", dispute.ID)
	if err := lg.Transfer(ctx, escrowAcct, ledger.UserAccount(lease.LandlordID), landlordAmount, ref); err != nil {
		return nil, err
	}
	if err := lg.Transfer(ctx, escrowAcct, ledger.UserAccount(lease.TenantID), tenantAmount, ref); err != nil {
		return nil, err
	}

	if err := disputes.Update(ctx, dispute); err != nil {
		return nil, err
	}
	if err := escrows.Update(ctx, escrow); err != nil {
		return nil, err
	}

	listings := s.listings.WithTx(tx)
	listing, err := listings.GetByID(ctx, lease.ListingID)
	if err != nil {
		return nil, err
	}
	listing.MarkAvailable()
	if err := listings.Update(ctx, listing); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "arbitrator",
		Action:      "dispute_resolved",
		EntityType:  "dispute",
		EntityID:    &dispute.ID,
		Meta: map[string]any{
			"lease_id":    dispute.LeaseID.String(),
			"to_landlord": landlordAmount,
			"to_tenant":   tenantAmount,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamDispute, events.Event{
		Type: events.EventDisputeResolved,
		Payload: map[string]any{
			"dispute_id":  dispute.ID.String(),
			"lease_id":    dispute.LeaseID.String(),
			"to_landlord": landlordAmount,
			"to_tenant":   tenantAmount,
		},
	})
	_ = s.publisher.Publish(ctx, events.StreamEscrow, events.Event{
		Type:    events.EventListingStatusSync,
		Payload: map[string]any{"listing_id": lease.ListingID.String(), "status": models.ListingStatusAvailable},
	})

	return dispute, nil
}

func (s *DisputeService) Get(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("dispute %s", id)
	}
	return d, nil
}

func (s *DisputeService) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]models.Dispute, error) {
	return s.disputes.ListByLease(ctx, leaseID)
}
