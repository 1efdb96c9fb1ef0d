package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
)

// Listing statuses
const (
	ListingStatusAvailable = "available"
	ListingStatusRented    = "rented"
	ListingStatusDelisted  = "delisted"
)

type Listing struct {
	ID                uuid.UUID  `json:"id"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	PropertyAttestRef string     `json:"property_attest_ref"` // opaque verified ownership credential
	Address           string     `json:"address"`
	Rent              int64      `json:"rent"`
	Deposit           int64      `json:"deposit"`
	GraceDays         int        `json:"grace_days"`
	Status            string     `json:"status"`
	CurrentLeaseID    *uuid.UUID `json:"current_lease_id,omitempty"`
	TotalLeases       int        `json:"total_leases"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ValidateTerms checks the listable terms.
func (p *Listing) ValidateTerms() error {
	if p.Address == "" {
		return apperr.Validation("address is required")
	}
	if p.Rent <= 0 || p.Deposit <= 0 {
		return apperr.Validation("rent and deposit must be positive")
	}
	if p.GraceDays < 0 || p.GraceDays > MaxGraceDays {
		return apperr.Validation("grace days must be between 0 and %d", MaxGraceDays)
	}
	return nil
}

// MarkRented points the listing at its new lease.
func (p *Listing) MarkRented(leaseID uuid.UUID) error {
	if p.Status != ListingStatusAvailable {
		return apperr.InvalidState("listing is %s, not available", p.Status)
	}
	p.Status = ListingStatusRented
	p.CurrentLeaseID = &leaseID
	p.TotalLeases++
	return nil
}

// MarkAvailable clears the current-lease pointer when a tenancy ends.
func (p *Listing) MarkAvailable() {
	p.Status = ListingStatusAvailable
	p.CurrentLeaseID = nil
}

// Delist takes the listing off the market. A listing with an active lease
// cannot be delisted.
func (p *Listing) Delist() error {
	if p.CurrentLeaseID != nil {
		return apperr.InvalidState("listing has an active lease")
	}
	if p.Status == ListingStatusDelisted {
		return apperr.InvalidState("listing is already delisted")
	}
	p.Status = ListingStatusDelisted
	return nil
}
