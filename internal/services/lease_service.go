package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/calendar"
	"github.com/rental-marketplace/backend/internal/config"
	"github.com/rental-marketplace/backend/internal/events"
	"github.com/rental-marketplace/backend/internal/ledger"
	"github.com/rental-marketplace/backend/internal/models"
	"github.com/rental-marketplace/backend/internal/repositories"
	"go.uber.org/zap"
)

type LeaseService struct {
	pool      *pgxpool.Pool
	leaseRepo *repositories.LeaseRepo
	listings  *repositories.ListingRepo
	apps      *repositories.ApplicationRepo
	escrows   *repositories.EscrowRepo
	auditRepo *repositories.AuditRepo
	ledger    *ledger.Ledger
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewLeaseService(
	pool *pgxpool.Pool,
	leaseRepo *repositories.LeaseRepo,
	listings *repositories.ListingRepo,
	apps *repositories.ApplicationRepo,
	escrows *repositories.EscrowRepo,
	auditRepo *repositories.AuditRepo,
	lg *ledger.Ledger,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *LeaseService {
	return &LeaseService{
		pool:      pool,
		leaseRepo: leaseRepo,
		listings:  listings,
		apps:      apps,
		escrows:   escrows,
		auditRepo: auditRepo,
		ledger:    lg,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

type SignLeaseInput struct {
	ApplicationID uuid.UUID
	StartDate     int64
	EndDate       int64
	PaymentDay    int
	TotalPayments int
}

// SignLease turns an approved application into an active lease. The tenant's
// signature is the funding: the deposit moves into escrow custody and the
// first rent period is split to the landlord and the platform, all in one
// transaction. If any transfer fails nothing is created.
func (s *LeaseService) SignLease(ctx context.Context, tenantID uuid.UUID, input SignLeaseInput) (*models.Lease, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	apps := s.apps.WithTx(tx)
	app, err := apps.GetByID(ctx, input.ApplicationID)
	if err != nil {
		return nil, apperr.NotFound("application %s", input.ApplicationID)
	}
	if app.ApplicantID != tenantID {
		return nil, apperr.Unauthorized("only the applicant may sign the lease")
	}
	if app.Status != models.ApplicationStatusApproved {
		return nil, apperr.InvalidState("application is %s, not approved", app.Status)
	}

	listings := s.listings.WithTx(tx)
	listing, err := listings.GetByID(ctx, app.ListingID)
	if err != nil {
		return nil, apperr.NotFound("listing %s", app.ListingID)
	}

	now := time.Now().Unix()
	lease := &models.Lease{
		ListingID:       listing.ID,
		LandlordID:      listing.OwnerID,
		TenantID:        tenantID,
		TenantAttestRef: app.TenantAttestRef,
		Rent:            app.OfferRent,
		Deposit:         app.OfferDeposit,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		PaymentDay:      input.PaymentDay,
		GraceDays:       listing.GraceDays,
		TotalPayments:   input.TotalPayments,
		Status:          models.LeaseStatusActive,
	}
	if err := lease.ValidateTerms(now, s.cfg.MaxAdvanceDays); err != nil {
		return nil, err
	}

	// The first rent period is collected at signing.
	lease.PaidPayments = 1
	lease.LastPaymentIndex = 0
	lease.LastPaymentDate = now
	lease.NextDueDate = calendar.NextPaymentDue(lease.StartDate, lease.PaymentDay, 0)

	if err := s.leaseRepo.WithTx(tx).Create(ctx, lease); err != nil {
		return nil, err
	}

	escrow := &models.Escrow{
		LeaseID: lease.ID,
		Amount:  lease.Deposit,
		Status:  models.EscrowStatusHolding,
	}
	if err := s.escrows.WithTx(tx).Create(ctx, escrow); err != nil {
		return nil, err
	}

	lg := s.ledger.WithTx(tx)
	tenantAcct := ledger.UserAccount(tenantID)
	ref := fmt.Sprintf("lease:%s:sign", lease.ID)

	if err := lg.Transfer(ctx, tenantAcct, ledger.EscrowAccount(escrow.ID), lease.Deposit, ref); err != nil {
		return nil, err
	}
	landlordShare, fee := models.SplitRent(lease.Rent, s.cfg.PlatformFeeBPS)
	if err := lg.Transfer(ctx, tenantAcct, ledger.UserAccount(lease.LandlordID), landlordShare, ref); err != nil {
		return nil, err
	}
	if err := lg.Transfer(ctx, tenantAcct, s.cfg.PlatformAccount, fee, ref); err != nil {
		return nil, err
	}

	if err := listing.MarkRented(lease.ID); err != nil {
		return nil, err
	}
	if err := listings.Update(ctx, listing); err != nil {
		return nil, err
	}

	app.Status = models.ApplicationStatusLeased
	if err := apps.Update(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &tenantID,
		ActorType:   "user",
		Action:      "lease_signed",
		EntityType:  "lease",
		EntityID:    &lease.ID,
		Meta: map[string]any{
			"listing_id": listing.ID.String(),
			"rent":       lease.Rent,
			"deposit":    lease.Deposit,
			"fee":        fee,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamLease, events.Event{
		Type: events.EventLeaseCreated,
		Payload: map[string]any{
			"lease_id":    lease.ID.String(),
			"listing_id":  listing.ID.String(),
			"landlord_id": lease.LandlordID.String(),
			"tenant_id":   lease.TenantID.String(),
		},
	})

	return lease, nil
}

// PayRent applies the next scheduled payment. Overdue detection and the
// overdue limit come from the model; the latch semantics require the bumped
// counter to persist even when the payment itself is refused, so that branch
// commits before returning the error.
func (s *LeaseService) PayRent(ctx context.Context, tenantID, leaseID uuid.UUID, paymentIndex int) (*models.Lease, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	leases := s.leaseRepo.WithTx(tx)
	lease, err := leases.GetByIDForUpdate(ctx, leaseID)
	if err != nil {
		return nil, apperr.NotFound("lease %s", leaseID)
	}

	now := time.Now().Unix()
	overdue, payErr := lease.RecordRentPayment(tenantID, paymentIndex, now, s.cfg.MaxOverdueCount, s.cfg.RejectOverdueAtLimit())
	if payErr != nil {
		if errors.Is(payErr, apperr.ErrPolicyLimit) {
			// Keep the incremented overdue counter so the limit holds.
			if err := leases.Update(ctx, lease); err != nil {
				return nil, err
			}
			_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
				ActorUserID: &tenantID,
				ActorType:   "user",
				Action:      "rent_payment_rejected_overdue_limit",
				EntityType:  "lease",
				EntityID:    &lease.ID,
				Meta:        map[string]any{"overdue_count": lease.OverdueCount, "payment_index": paymentIndex},
			})
			if err := tx.Commit(ctx); err != nil {
				return nil, err
			}
			_ = s.publisher.Publish(ctx, events.StreamLease, events.Event{
				Type:    events.EventRentOverdue,
				Payload: map[string]any{"lease_id": lease.ID.String(), "overdue_count": lease.OverdueCount},
			})
		}
		return nil, payErr
	}

	lg := s.ledger.WithTx(tx)
	tenantAcct := ledger.UserAccount(tenantID)
	ref := fmt.Sprintf("lease:%s:rent:%d", lease.ID, paymentIndex)

	landlordShare, fee := models.SplitRent(lease.Rent, s.cfg.PlatformFeeBPS)
	if err := lg.Transfer(ctx, tenantAcct, ledger.UserAccount(lease.LandlordID), landlordShare, ref); err != nil {
		return nil, err
	}
	if err := lg.Transfer(ctx, tenantAcct, s.cfg.PlatformAccount, fee, ref); err != nil {
		return nil, err
	}

	if err := leases.Update(ctx, lease); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &tenantID,
		ActorType:   "user",
		Action:      "rent_paid",
		EntityType:  "lease",
		EntityID:    &lease.ID,
		Meta: map[string]any{
			"payment_index": paymentIndex,
			"overdue":       overdue,
			"paid_payments": lease.PaidPayments,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamLease, events.Event{
		Type: events.EventRentPaid,
		Payload: map[string]any{
			"lease_id":      lease.ID.String(),
			"payment_index": paymentIndex,
			"overdue":       overdue,
		},
	})
	if overdue {
		_ = s.publisher.Publish(ctx, events.StreamLease, events.Event{
			Type:    events.EventRentOverdue,
			Payload: map[string]any{"lease_id": lease.ID.String(), "overdue_count": lease.OverdueCount},
		})
	}
	if lease.Status == models.LeaseStatusCompleted {
		_ = s.publisher.Publish(ctx, events.StreamLease, events.Event{
			Type:    events.EventLeaseCompleted,
			Payload: map[string]any{"lease_id": lease.ID.String()},
		})
	}

	return lease, nil
}

// Terminate ends an active lease early. Escrow funds stay in custody; only
// the settlement operations move them afterwards.
func (s *LeaseService) Terminate(ctx context.Context, callerID, leaseID uuid.UUID, reason string) (*models.Lease, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	leases := s.leaseRepo.WithTx(tx)
	lease, err := leases.GetByIDForUpdate(ctx, leaseID)
	if err != nil {
		return nil, apperr.NotFound("lease %s", leaseID)
	}

	if err := lease.Terminate(callerID, reason); err != nil {
		return nil, err
	}
	if err := leases.Update(ctx, lease); err != nil {
		return nil, err
	}

	_ = s.auditRepo.WithTx(tx).Log(ctx, models.AuditLog{
		ActorUserID: &callerID,
		ActorType:   "user",
		Action:      "lease_terminated",
		EntityType:  "lease",
		EntityID:    &lease.ID,
		Meta:        map[string]any{"reason": reason},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.publisher.Publish(ctx, events.StreamLease, events.Event{
		Type:    events.EventLeaseTerminated,
		Payload: map[string]any{"lease_id": lease.ID.String(), "reason": reason},
	})

	return lease, nil
}

func (s *LeaseService) GetLease(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	lease, err := s.leaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("lease %s", id)
	}
	return lease, nil
}

func (s *LeaseService) ListLeases(ctx context.Context, f repositories.LeaseFilter) ([]models.Lease, error) {
	return s.leaseRepo.List(ctx, f)
}

func (s *LeaseService) GetLeaseEvents(ctx context.Context, leaseID uuid.UUID) ([]models.AuditLog, error) {
	return s.auditRepo.GetByEntity(ctx, "lease", leaseID, 100, 0)
}
