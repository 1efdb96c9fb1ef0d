package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/models"
	"github.com/rental-marketplace/backend/internal/repositories"
	"go.uber.org/zap"
)

type ListingService struct {
	listings  *repositories.ListingRepo
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewListingService(listings *repositories.ListingRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *ListingService {
	return &ListingService{listings: listings, auditRepo: auditRepo, log: log}
}

type CreateListingInput struct {
	PropertyAttestRef string
	Address           string
	Rent              int64
	Deposit           int64
	GraceDays         int
}

func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, input CreateListingInput) (*models.Listing, error) {
	if input.PropertyAttestRef == "" {
		return nil, apperr.Validation("property attestation reference is required")
	}

	listing := &models.Listing{
		OwnerID:           ownerID,
		PropertyAttestRef: input.PropertyAttestRef,
		Address:           input.Address,
		Rent:              input.Rent,
		Deposit:           input.Deposit,
		GraceDays:         input.GraceDays,
		Status:            models.ListingStatusAvailable,
	}
	if err := listing.ValidateTerms(); err != nil {
		return nil, err
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &ownerID,
		ActorType:   "user",
		Action:      "listing_created",
		EntityType:  "listing",
		EntityID:    &listing.ID,
		Meta:        map[string]any{"rent": listing.Rent, "deposit": listing.Deposit},
	})

	return listing, nil
}

type UpdateListingInput struct {
	Rent      *int64
	Deposit   *int64
	GraceDays *int
}

// Update changes listable terms. Terms of an already-leased listing stay
// frozen; the active lease carries its own copy anyway.
func (s *ListingService) Update(ctx context.Context, ownerID, listingID uuid.UUID, input UpdateListingInput) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperr.NotFound("listing %s", listingID)
	}
	if listing.OwnerID != ownerID {
		return nil, apperr.Unauthorized("only the owner may update the listing")
	}
	if listing.Status == models.ListingStatusRented {
		return nil, apperr.InvalidState("listing terms are frozen while leased")
	}

	if input.Rent != nil {
		listing.Rent = *input.Rent
	}
	if input.Deposit != nil {
		listing.Deposit = *input.Deposit
	}
	if input.GraceDays != nil {
		listing.GraceDays = *input.GraceDays
	}
	if err := listing.ValidateTerms(); err != nil {
		return nil, err
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) Delist(ctx context.Context, ownerID, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, apperr.NotFound("listing %s", listingID)
	}
	if listing.OwnerID != ownerID {
		return nil, apperr.Unauthorized("only the owner may delist")
	}
	if err := listing.Delist(); err != nil {
		return nil, err
	}
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &ownerID,
		ActorType:   "user",
		Action:      "listing_delisted",
		EntityType:  "listing",
		EntityID:    &listing.ID,
	})

	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("listing %s", id)
	}
	return listing, nil
}

func (s *ListingService) List(ctx context.Context, f repositories.ListingFilter) ([]models.Listing, error) {
	return s.listings.List(ctx, f)
}
