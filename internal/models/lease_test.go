package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rental-marketplace/backend/internal/apperr"
	"github.com/rental-marketplace/backend/internal/calendar"
)

func TestIsValidLeaseTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{LeaseStatusActive, LeaseStatusCompleted, true},
		{LeaseStatusActive, LeaseStatusTerminated, true},
		{LeaseStatusCompleted, LeaseStatusActive, false},
		{LeaseStatusCompleted, LeaseStatusTerminated, false},
		{LeaseStatusTerminated, LeaseStatusActive, false},
		{LeaseStatusTerminated, LeaseStatusCompleted, false},
		{"nonexistent", LeaseStatusActive, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidLeaseTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidLeaseTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func activeLease() *Lease {
	start := calendar.DateToTimestamp(2024, 1, 15)
	return &Lease{
		ID:               uuid.New(),
		LandlordID:       uuid.New(),
		TenantID:         uuid.New(),
		Rent:             50000,
		Deposit:          100000,
		StartDate:        start,
		EndDate:          calendar.DateToTimestamp(2025, 1, 15),
		PaymentDay:       31,
		GraceDays:        0,
		TotalPayments:    12,
		PaidPayments:     1, // first period collected at signing
		LastPaymentIndex: 0,
		NextDueDate:      calendar.NextPaymentDue(start, 31, 0),
		Status:           LeaseStatusActive,
	}
}

func TestValidateTerms(t *testing.T) {
	now := calendar.DateToTimestamp(2024, 1, 1)

	base := func() *Lease {
		l := activeLease()
		l.StartDate = calendar.DateToTimestamp(2024, 1, 15)
		return l
	}

	tests := []struct {
		name   string
		mutate func(*Lease)
		kind   error
	}{
		{"valid", func(l *Lease) {}, nil},
		{"start in past", func(l *Lease) { l.StartDate = now - 86400 }, apperr.ErrValidation},
		{"start equals now", func(l *Lease) { l.StartDate = now }, apperr.ErrValidation},
		{"start too far ahead", func(l *Lease) {
			l.StartDate = now + 31*86400
			l.EndDate = l.StartDate + 86400
		}, apperr.ErrValidation},
		{"end before start", func(l *Lease) { l.EndDate = l.StartDate - 1 }, apperr.ErrValidation},
		{"payment day zero", func(l *Lease) { l.PaymentDay = 0 }, apperr.ErrValidation},
		{"payment day 29", func(l *Lease) { l.PaymentDay = 29 }, apperr.ErrValidation},
		{"grace days 8", func(l *Lease) { l.GraceDays = 8 }, apperr.ErrValidation},
		{"zero payments", func(l *Lease) { l.TotalPayments = 0 }, apperr.ErrValidation},
		{"zero rent", func(l *Lease) { l.Rent = 0 }, apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base()
			tt.mutate(l)
			err := l.ValidateTerms(now, 30)
			if tt.kind == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("got %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestRecordRentPaymentSequence(t *testing.T) {
	l := activeLease()
	onTime := l.NextDueDate

	if _, err := l.RecordRentPayment(uuid.New(), 1, onTime, 3, true); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("stranger payment: got %v, want unauthorized", err)
	}
	if _, err := l.RecordRentPayment(l.TenantID, 2, onTime, 3, true); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("skipped index: got %v, want validation error", err)
	}

	overdue, err := l.RecordRentPayment(l.TenantID, 1, onTime, 3, true)
	if err != nil {
		t.Fatalf("payment 1: %v", err)
	}
	if overdue {
		t.Error("on-time payment flagged overdue")
	}
	if l.PaidPayments != 2 || l.LastPaymentIndex != 1 {
		t.Errorf("paid=%d lastIndex=%d, want 2/1", l.PaidPayments, l.LastPaymentIndex)
	}

	// Due date advanced: Feb 29 -> Mar 31 (scenario A).
	if y, m, d := calendar.TimestampToDate(l.NextDueDate); y != 2024 || m != 3 || d != 31 {
		t.Errorf("next due (%d-%d-%d), want (2024-3-31)", y, m, d)
	}

	// Replaying the same index is rejected.
	if _, err := l.RecordRentPayment(l.TenantID, 1, onTime, 3, true); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("replayed index: got %v, want validation error", err)
	}
}

func TestRecordRentPaymentNotYetDue(t *testing.T) {
	l := activeLease()

	// Minutes after signing, nothing beyond the first period has fallen due:
	// the tenant cannot prepay their way through the schedule.
	early := l.StartDate + 60
	for i := 1; i < l.TotalPayments; i++ {
		if _, err := l.RecordRentPayment(l.TenantID, i, early, 3, true); !errors.Is(err, apperr.ErrInvalidState) {
			t.Fatalf("early payment %d: got %v, want state error", i, err)
		}
	}
	if l.PaidPayments != 1 || l.Status != LeaseStatusActive {
		t.Fatalf("early payments mutated lease: paid=%d status=%s", l.PaidPayments, l.Status)
	}

	// One second before the due date is still too early; the due instant
	// itself is accepted.
	if _, err := l.RecordRentPayment(l.TenantID, 1, l.NextDueDate-1, 3, true); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("payment at due-1s: got %v, want state error", err)
	}
	if _, err := l.RecordRentPayment(l.TenantID, 1, l.NextDueDate, 3, true); err != nil {
		t.Fatalf("payment at due date: %v", err)
	}

	// The gate re-arms for the following period.
	if _, err := l.RecordRentPayment(l.TenantID, 2, l.LastPaymentDate+60, 3, true); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("immediate next payment: got %v, want state error", err)
	}
	if _, err := l.RecordRentPayment(l.TenantID, 2, l.NextDueDate, 3, true); err != nil {
		t.Fatalf("next payment at due date: %v", err)
	}
}

func TestRecordRentPaymentOverdueLatch(t *testing.T) {
	l := activeLease()
	l.TotalPayments = 24

	// Two overdue payments succeed while under the limit.
	for i := 1; i <= 2; i++ {
		late := l.NextDueDate + 86400*2
		overdue, err := l.RecordRentPayment(l.TenantID, i, late, 3, true)
		if err != nil {
			t.Fatalf("payment %d: %v", i, err)
		}
		if !overdue {
			t.Errorf("payment %d should be overdue", i)
		}
	}
	if l.OverdueCount != 2 {
		t.Fatalf("overdue count = %d, want 2", l.OverdueCount)
	}

	// Third overdue payment hits the limit and is rejected, but the counter
	// still advances so the latch holds.
	late := l.NextDueDate + 86400*2
	if _, err := l.RecordRentPayment(l.TenantID, 3, late, 3, true); !errors.Is(err, apperr.ErrPolicyLimit) {
		t.Fatalf("got %v, want policy limit error", err)
	}
	if l.OverdueCount != 3 {
		t.Fatalf("overdue count = %d, want 3", l.OverdueCount)
	}
	if l.PaidPayments != 3 {
		t.Fatalf("rejected payment mutated paid count: %d", l.PaidPayments)
	}

	// Retrying stays rejected and the counter never decreases.
	if _, err := l.RecordRentPayment(l.TenantID, 3, l.NextDueDate+86400*2, 3, true); !errors.Is(err, apperr.ErrPolicyLimit) {
		t.Fatalf("retry: got %v, want policy limit error", err)
	}
	if l.OverdueCount != 4 {
		t.Fatalf("overdue count = %d, want 4 (monotonic)", l.OverdueCount)
	}
}

func TestRecordRentPaymentLenientPolicy(t *testing.T) {
	l := activeLease()
	l.TotalPayments = 24
	l.OverdueCount = 5

	late := l.NextDueDate + 86400*2
	overdue, err := l.RecordRentPayment(l.TenantID, 1, late, 3, false)
	if err != nil {
		t.Fatalf("lenient policy rejected payment: %v", err)
	}
	if !overdue || l.OverdueCount != 6 {
		t.Errorf("overdue=%v count=%d, want true/6", overdue, l.OverdueCount)
	}
}

func TestRecordRentPaymentGraceWindow(t *testing.T) {
	l := activeLease()
	l.GraceDays = 3

	withinGrace := l.NextDueDate + 3*86400
	overdue, err := l.RecordRentPayment(l.TenantID, 1, withinGrace, 3, true)
	if err != nil {
		t.Fatalf("payment within grace: %v", err)
	}
	if overdue {
		t.Error("payment within grace window flagged overdue")
	}
}

func TestLeaseAutoCompletes(t *testing.T) {
	l := activeLease()
	l.TotalPayments = 2

	if _, err := l.RecordRentPayment(l.TenantID, 1, l.NextDueDate, 3, true); err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if l.Status != LeaseStatusCompleted {
		t.Errorf("status = %s, want completed", l.Status)
	}

	// No payments accepted after completion.
	if _, err := l.RecordRentPayment(l.TenantID, 2, l.NextDueDate, 3, true); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("got %v, want state error", err)
	}
}

func TestTerminate(t *testing.T) {
	l := activeLease()

	if err := l.Terminate(uuid.New(), TerminationMutual); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("stranger terminate: got %v", err)
	}
	if err := l.Terminate(l.LandlordID, "vibes"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("bad reason: got %v", err)
	}
	if err := l.Terminate(l.LandlordID, TerminationOverdueExceeded); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if l.Status != LeaseStatusTerminated || l.TerminationReason == nil || *l.TerminationReason != TerminationOverdueExceeded {
		t.Errorf("status=%s reason=%v", l.Status, l.TerminationReason)
	}
	if err := l.Terminate(l.TenantID, TerminationMutual); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("double terminate: got %v", err)
	}
}

func TestSplitRent(t *testing.T) {
	tests := []struct {
		rent     int64
		feeBPS   int
		landlord int64
		fee      int64
	}{
		{50000, 250, 48750, 1250},
		{50000, 0, 50000, 0},
		{999, 250, 975, 24}, // fee truncates toward zero
	}
	for _, tt := range tests {
		landlord, fee := SplitRent(tt.rent, tt.feeBPS)
		if landlord != tt.landlord || fee != tt.fee {
			t.Errorf("SplitRent(%d, %d) = (%d, %d), want (%d, %d)",
				tt.rent, tt.feeBPS, landlord, fee, tt.landlord, tt.fee)
		}
		if landlord+fee != tt.rent {
			t.Errorf("split of %d does not conserve: %d+%d", tt.rent, landlord, fee)
		}
	}
}
