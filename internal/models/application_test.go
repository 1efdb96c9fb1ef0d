package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
)

func TestApplicationCounter(t *testing.T) {
	owner := uuid.New()
	applicant := uuid.New()
	app := &Application{
		ID:           uuid.New(),
		ApplicantID:  applicant,
		OfferRent:    50000,
		OfferDeposit: 100000,
		Status:       ApplicationStatusPending,
		LastActorID:  applicant, // applicant made the opening offer
	}

	if err := app.Counter(uuid.New(), owner, 48000, 96000, 4); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("stranger counter: got %v", err)
	}
	// The applicant cannot counter their own pending offer.
	if err := app.Counter(applicant, owner, 48000, 96000, 4); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("consecutive same-side counter: got %v", err)
	}

	if err := app.Counter(owner, owner, 52000, 100000, 4); err != nil {
		t.Fatalf("owner counter: %v", err)
	}
	if app.Status != ApplicationStatusNegotiating || app.Rounds != 1 || app.OfferRent != 52000 {
		t.Errorf("status=%s rounds=%d rent=%d", app.Status, app.Rounds, app.OfferRent)
	}

	if err := app.Counter(applicant, owner, 50000, 100000, 4); err != nil {
		t.Fatalf("applicant counter: %v", err)
	}

	// Rounds are bounded.
	app.Rounds = 4
	app.LastActorID = applicant
	if err := app.Counter(owner, owner, 51000, 100000, 4); !errors.Is(err, apperr.ErrPolicyLimit) {
		t.Fatalf("over round limit: got %v", err)
	}
}

func TestApplicationCounterClosedStates(t *testing.T) {
	owner := uuid.New()
	for _, status := range []string{ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusLeased} {
		app := &Application{ApplicantID: uuid.New(), Status: status}
		if err := app.Counter(owner, owner, 50000, 100000, 4); !errors.Is(err, apperr.ErrInvalidState) {
			t.Errorf("counter on %s application: got %v", status, err)
		}
	}
}

func TestIsValidApplicationTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{ApplicationStatusPending, ApplicationStatusApproved, true},
		{ApplicationStatusNegotiating, ApplicationStatusNegotiating, true},
		{ApplicationStatusApproved, ApplicationStatusLeased, true},
		{ApplicationStatusRejected, ApplicationStatusApproved, false},
		{ApplicationStatusLeased, ApplicationStatusPending, false},
	}
	for _, tt := range tests {
		if got := IsValidApplicationTransition(tt.from, tt.to); got != tt.expected {
			t.Errorf("IsValidApplicationTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
		}
	}
}
