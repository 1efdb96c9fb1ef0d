package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
)

// Application statuses
const (
	ApplicationStatusPending     = "pending"
	ApplicationStatusNegotiating = "negotiating"
	ApplicationStatusApproved    = "approved"
	ApplicationStatusRejected    = "rejected"
	ApplicationStatusLeased      = "leased" // consumed by a signed lease
)

var ValidApplicationTransitions = map[string][]string{
	ApplicationStatusPending:     {ApplicationStatusNegotiating, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusNegotiating: {ApplicationStatusNegotiating, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusApproved:    {ApplicationStatusLeased, ApplicationStatusRejected},
	ApplicationStatusRejected:    {},
	ApplicationStatusLeased:      {},
}

func IsValidApplicationTransition(from, to string) bool {
	allowed, ok := ValidApplicationTransitions[from]
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

// Application is a tenant's offer on a listing, negotiable for a bounded
// number of counter-offer rounds.
type Application struct {
	ID              uuid.UUID `json:"id"`
	ListingID       uuid.UUID `json:"listing_id"`
	ApplicantID     uuid.UUID `json:"applicant_id"`
	TenantAttestRef string    `json:"tenant_attest_ref"` // opaque verified identity credential
	OfferRent       int64     `json:"offer_rent"`
	OfferDeposit    int64     `json:"offer_deposit"`
	Message         string    `json:"message"`
	Rounds          int       `json:"rounds"` // counter-offers exchanged so far
	LastActorID     uuid.UUID `json:"last_actor_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Counter records a counter-offer from either side. Rounds are bounded by
// maxRounds; consecutive offers from the same side are rejected so the
// exchange stays a back-and-forth.
func (a *Application) Counter(actor uuid.UUID, listingOwner uuid.UUID, offerRent, offerDeposit int64, maxRounds int) error {
	if actor != a.ApplicantID && actor != listingOwner {
		return apperr.Unauthorized("only the applicant or the listing owner may counter")
	}
	if a.Status != ApplicationStatusPending && a.Status != ApplicationStatusNegotiating {
		return apperr.InvalidState("application is %s, cannot counter", a.Status)
	}
	if actor == a.LastActorID {
		return apperr.InvalidState("waiting for the other side to respond")
	}
	if a.Rounds >= maxRounds {
		return apperr.PolicyLimit("negotiation round limit %d reached", maxRounds)
	}
	if offerRent <= 0 || offerDeposit <= 0 {
		return apperr.Validation("offer rent and deposit must be positive")
	}

	a.OfferRent = offerRent
	a.OfferDeposit = offerDeposit
	a.Rounds++
	a.LastActorID = actor
	a.Status = ApplicationStatusNegotiating
	return nil
}
