package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/calendar"
)

// Lease statuses
const (
	LeaseStatusActive     = "active"
	LeaseStatusCompleted  = "completed"
	LeaseStatusTerminated = "terminated"
)

// Valid state transitions: from -> []to
var ValidLeaseTransitions = map[string][]string{
	LeaseStatusActive:     {LeaseStatusCompleted, LeaseStatusTerminated},
	LeaseStatusCompleted:  {},
	LeaseStatusTerminated: {},
}

func IsValidLeaseTransition(from, to string) bool {
	allowed, ok := ValidLeaseTransitions[from]
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

// Termination reasons
const (
	TerminationMutual          = "mutual"
	TerminationLandlordBreach  = "landlord_breach"
	TerminationTenantBreach    = "tenant_breach"
	TerminationOverdueExceeded = "overdue_exceeded"
)

func IsValidTerminationReason(reason string) bool {
	switch reason {
	case TerminationMutual, TerminationLandlordBreach, TerminationTenantBreach, TerminationOverdueExceeded:
		return true
	}
	return false
}

// Protocol limits
const (
	MaxPaymentDay = 28
	MaxGraceDays  = 7
)

type Lease struct {
	ID                uuid.UUID `json:"id"`
	ListingID         uuid.UUID `json:"listing_id"`
	LandlordID        uuid.UUID `json:"landlord_id"`
	TenantID          uuid.UUID `json:"tenant_id"`
	TenantAttestRef   string    `json:"tenant_attest_ref"`
	Rent              int64     `json:"rent"`
	Deposit           int64     `json:"deposit"`
	StartDate         int64     `json:"start_date"`
	EndDate           int64     `json:"end_date"`
	PaymentDay        int       `json:"payment_day"` // 1-28
	GraceDays         int       `json:"grace_days"`  // 0-7
	TotalPayments     int       `json:"total_payments"`
	PaidPayments      int       `json:"paid_payments"`
	LastPaymentDate   int64     `json:"last_payment_date"`
	LastPaymentIndex  int       `json:"last_payment_index"`
	OverdueCount      int       `json:"overdue_count"`
	NextDueDate       int64     `json:"next_due_date"`
	DisputeCount      int       `json:"dispute_count"`
	Status            string    `json:"status"`
	TerminationReason *string   `json:"termination_reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsParty reports whether userID is the landlord or tenant of record.
func (l *Lease) IsParty(userID uuid.UUID) bool {
	return userID == l.LandlordID || userID == l.TenantID
}

// OtherParty returns the counter-party of userID on this lease.
func (l *Lease) OtherParty(userID uuid.UUID) uuid.UUID {
	if userID == l.LandlordID {
		return l.TenantID
	}
	return l.LandlordID
}

// ValidateTerms checks the contractual terms at signing time. The start date
// must be strictly in the future but no more than maxAdvanceDays ahead.
func (l *Lease) ValidateTerms(now int64, maxAdvanceDays int) error {
	if l.StartDate <= now {
		return apperr.Validation("start date must be in the future")
	}
	if l.StartDate >= now+int64(maxAdvanceDays)*86400 {
		return apperr.Validation("start date more than %d days ahead", maxAdvanceDays)
	}
	if l.EndDate <= l.StartDate {
		return apperr.Validation("end date must be after start date")
	}
	if l.PaymentDay < 1 || l.PaymentDay > MaxPaymentDay {
		return apperr.Validation("payment day must be between 1 and %d", MaxPaymentDay)
	}
	if l.GraceDays < 0 || l.GraceDays > MaxGraceDays {
		return apperr.Validation("grace days must be between 0 and %d", MaxGraceDays)
	}
	if l.TotalPayments <= 0 {
		return apperr.Validation("total payments must be positive")
	}
	if l.Rent <= 0 || l.Deposit <= 0 {
		return apperr.Validation("rent and deposit must be positive")
	}
	return nil
}

// RecordRentPayment applies one rent payment to the lease. It validates the
// caller, the lease status, the payment sequence and that the period has
// actually fallen due, detects overdue from the caller-supplied clock, and
// enforces the overdue limit. The overdue counter is incremented even when
// the payment is rejected at the limit, so the latch survives and the only
// remaining path is termination. The mutation is applied in memory;
// persistence is the caller's job.
func (l *Lease) RecordRentPayment(caller uuid.UUID, paymentIndex int, now int64, maxOverdue int, rejectAtLimit bool) (overdue bool, err error) {
	if l.Status != LeaseStatusActive {
		return false, apperr.InvalidState("lease is %s, not active", l.Status)
	}
	if caller != l.TenantID {
		return false, apperr.Unauthorized("only the tenant of record may pay rent")
	}
	if paymentIndex != l.LastPaymentIndex+1 {
		return false, apperr.Validation("payment index %d out of sequence, expected %d", paymentIndex, l.LastPaymentIndex+1)
	}
	if paymentIndex >= l.TotalPayments {
		return false, apperr.Validation("payment index %d exceeds contracted payments %d", paymentIndex, l.TotalPayments)
	}
	// PaidPayments-1 periods precede the one being paid, so this is the gate
	// on NextDueDate: a period cannot be paid before it falls due.
	if !calendar.IsRentDue(now, l.StartDate, l.PaymentDay, l.PaidPayments-1) {
		return false, apperr.InvalidState("payment %d is not due until %d", paymentIndex, l.NextDueDate)
	}

	overdue = now > l.NextDueDate+int64(l.GraceDays)*86400
	if overdue {
		l.OverdueCount++
		if rejectAtLimit && l.OverdueCount >= maxOverdue {
			return true, apperr.PolicyLimit("overdue count %d reached limit %d, terminate for cause", l.OverdueCount, maxOverdue)
		}
	}

	l.PaidPayments++
	l.LastPaymentDate = now
	l.LastPaymentIndex = paymentIndex
	l.NextDueDate = calendar.NextPaymentDue(l.StartDate, l.PaymentDay, l.PaidPayments-1)
	if l.PaidPayments >= l.TotalPayments {
		l.Status = LeaseStatusCompleted
	}
	return overdue, nil
}

// Terminate moves an active lease to terminated, stamping the reason.
// It does not move escrow funds; it only unblocks the settlement path.
func (l *Lease) Terminate(caller uuid.UUID, reason string) error {
	if !l.IsParty(caller) {
		return apperr.Unauthorized("only a lease party may terminate")
	}
	if !IsValidTerminationReason(reason) {
		return apperr.Validation("invalid termination reason %q", reason)
	}
	if !IsValidLeaseTransition(l.Status, LeaseStatusTerminated) {
		return apperr.InvalidState("lease is %s, cannot terminate", l.Status)
	}
	l.Status = LeaseStatusTerminated
	l.TerminationReason = &reason
	return nil
}

// SplitRent divides a rent payment into the landlord share and the platform
// fee at the given basis-point rate.
func SplitRent(rent int64, feeBPS int) (landlord, fee int64) {
	fee = rent * int64(feeBPS) / 10000
	return rent - fee, fee
}
