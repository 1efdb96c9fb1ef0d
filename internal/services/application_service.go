package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/config"
	"github.com/rental-marketplace/backend/internal/models"
	"github.com/rental-marketplace/backend/internal/repositories"
	"go.uber.org/zap"
)

type ApplicationService struct {
	apps      *repositories.ApplicationRepo
	listings  *repositories.ListingRepo
	auditRepo *repositories.AuditRepo
	cfg       *config.Config
	log       *zap.Logger
}

func NewApplicationService(
	apps *repositories.ApplicationRepo,
	listings *repositories.ListingRepo,
	auditRepo *repositories.AuditRepo,
	cfg *config.Config,
	log *zap.Logger,
) *ApplicationService {
	return &ApplicationService{apps: apps, listings: listings, auditRepo: auditRepo, cfg: cfg, log: log}
}

type ApplyInput struct {
	ListingID       uuid.UUID
	TenantAttestRef string
	OfferRent       int64
	OfferDeposit    int64
	Message         string
}

// Apply opens an application on an available listing. The opening offer
// defaults to the listed terms when the applicant leaves them zero.
func (s *ApplicationService) Apply(ctx context.Context, applicantID uuid.UUID, input ApplyInput) (*models.Application, error) {
	listing, err := s.listings.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, apperr.NotFound("listing %s", input.ListingID)
	}
	if listing.Status != models.ListingStatusAvailable {
		return nil, apperr.InvalidState("listing is %s, not accepting applications", listing.Status)
	}
	if listing.OwnerID == applicantID {
		return nil, apperr.Validation("cannot apply to your own listing")
	}
	if input.TenantAttestRef == "" {
		return nil, apperr.Validation("tenant attestation reference is required")
	}

	offerRent := input.OfferRent
	if offerRent == 0 {
		offerRent = listing.Rent
	}
	offerDeposit := input.OfferDeposit
	if offerDeposit == 0 {
		offerDeposit = listing.Deposit
	}
	if offerRent <= 0 || offerDeposit <= 0 {
		return nil, apperr.Validation("offer rent and deposit must be positive")
	}

	app := &models.Application{
		ListingID:       listing.ID,
		ApplicantID:     applicantID,
		TenantAttestRef: input.TenantAttestRef,
		OfferRent:       offerRent,
		OfferDeposit:    offerDeposit,
		Message:         input.Message,
		LastActorID:     applicantID,
		Status:          models.ApplicationStatusPending,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &applicantID,
		ActorType:   "user",
		Action:      "application_created",
		EntityType:  "application",
		EntityID:    &app.ID,
		Meta:        map[string]any{"listing_id": listing.ID.String(), "offer_rent": offerRent},
	})

	return app, nil
}

// Counter records a counter-offer from either side of the negotiation.
func (s *ApplicationService) Counter(ctx context.Context, actorID, applicationID uuid.UUID, offerRent, offerDeposit int64) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, apperr.NotFound("application %s", applicationID)
	}
	listing, err := s.listings.GetByID(ctx, app.ListingID)
	if err != nil {
		return nil, apperr.NotFound("listing %s", app.ListingID)
	}

	if err := app.Counter(actorID, listing.OwnerID, offerRent, offerDeposit, s.cfg.MaxNegotiationRounds); err != nil {
		return nil, err
	}
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      "application_countered",
		EntityType:  "application",
		EntityID:    &app.ID,
		Meta:        map[string]any{"offer_rent": offerRent, "offer_deposit": offerDeposit, "rounds": app.Rounds},
	})

	return app, nil
}

// Approve locks in the current offer; only signing can consume it afterwards.
func (s *ApplicationService) Approve(ctx context.Context, ownerID, applicationID uuid.UUID) (*models.Application, error) {
	return s.decide(ctx, ownerID, applicationID, models.ApplicationStatusApproved, "application_approved")
}

func (s *ApplicationService) Reject(ctx context.Context, ownerID, applicationID uuid.UUID) (*models.Application, error) {
	return s.decide(ctx, ownerID, applicationID, models.ApplicationStatusRejected, "application_rejected")
}

func (s *ApplicationService) decide(ctx context.Context, ownerID, applicationID uuid.UUID, newStatus, action string) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, apperr.NotFound("application %s", applicationID)
	}
	listing, err := s.listings.GetByID(ctx, app.ListingID)
	if err != nil {
		return nil, apperr.NotFound("listing %s", app.ListingID)
	}
	if listing.OwnerID != ownerID {
		return nil, apperr.Unauthorized("only the listing owner may decide applications")
	}
	if !models.IsValidApplicationTransition(app.Status, newStatus) {
		return nil, apperr.InvalidState("application is %s, cannot move to %s", app.Status, newStatus)
	}

	app.Status = newStatus
	if err := s.apps.Update(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &ownerID,
		ActorType:   "user",
		Action:      action,
		EntityType:  "application",
		EntityID:    &app.ID,
	})

	return app, nil
}

func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("application %s", id)
	}
	return app, nil
}

func (s *ApplicationService) List(ctx context.Context, f repositories.ApplicationFilter) ([]models.Application, error) {
	return s.apps.List(ctx, f)
}
