package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/models"
)

type LeaseRepo struct {
	db DBTX
}

func NewLeaseRepo(pool *pgxpool.Pool) *LeaseRepo {
	return &LeaseRepo{db: pool}
}

func (r *LeaseRepo) WithTx(tx pgx.Tx) *LeaseRepo {
	return &LeaseRepo{db: tx}
}

const leaseColumns = `id, listing_id, landlord_id, tenant_id, tenant_attest_ref, rent, deposit,
	       start_date, end_date, payment_day, grace_days, total_payments, paid_payments,
	       last_payment_date, last_payment_index, overdue_count, next_due_date, dispute_count,
	       status, termination_reason, created_at, updated_at`

func (r *LeaseRepo) scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	err := row.Scan(&l.ID, &l.ListingID, &l.LandlordID, &l.TenantID, &l.TenantAttestRef, &l.Rent, &l.Deposit,
		&l.StartDate, &l.EndDate, &l.PaymentDay, &l.GraceDays, &l.TotalPayments, &l.PaidPayments,
		&l.LastPaymentDate, &l.LastPaymentIndex, &l.OverdueCount, &l.NextDueDate, &l.DisputeCount,
		&l.Status, &l.TerminationReason, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeaseRepo) Create(ctx context.Context, l *models.Lease) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO leases (listing_id, landlord_id, tenant_id, tenant_attest_ref, rent, deposit,
		                    start_date, end_date, payment_day, grace_days, total_payments, paid_payments,
		                    last_payment_date, last_payment_index, next_due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`, l.ListingID, l.LandlordID, l.TenantID, l.TenantAttestRef, l.Rent, l.Deposit,
		l.StartDate, l.EndDate, l.PaymentDay, l.GraceDays, l.TotalPayments, l.PaidPayments,
		l.LastPaymentDate, l.LastPaymentIndex, l.NextDueDate, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *LeaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.scanLease(r.db.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = $1`, id))
}

// GetByIDForUpdate locks the lease row for the duration of the transaction.
// Payment and termination flows read-modify-write the schedule counters, so
// concurrent calls must serialize on the row.
func (r *LeaseRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Lease, error) {
	return r.scanLease(r.db.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id = $1 FOR UPDATE`, id))
}

// Update persists every mutable lease column after a model transition.
func (r *LeaseRepo) Update(ctx context.Context, l *models.Lease) error {
	_, err := r.db.Exec(ctx, `
		UPDATE leases SET paid_payments = $1, last_payment_date = $2, last_payment_index = $3,
		       overdue_count = $4, next_due_date = $5, dispute_count = $6, status = $7,
		       termination_reason = $8, updated_at = now()
		WHERE id = $9
	`, l.PaidPayments, l.LastPaymentDate, l.LastPaymentIndex,
		l.OverdueCount, l.NextDueDate, l.DisputeCount, l.Status, l.TerminationReason, l.ID)
	return err
}

type LeaseFilter struct {
	LandlordID *uuid.UUID
	TenantID   *uuid.UUID
	ListingID  *uuid.UUID
	Status     *string
	Limit      int
	Offset     int
}

func (r *LeaseRepo) List(ctx context.Context, f LeaseFilter) ([]models.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.LandlordID != nil {
		where = append(where, fmt.Sprintf("landlord_id = $%d", argIdx))
		args = append(args, *f.LandlordID)
		argIdx++
	}
	if f.TenantID != nil {
		where = append(where, fmt.Sprintf("tenant_id = $%d", argIdx))
		args = append(args, *f.TenantID)
		argIdx++
	}
	if f.ListingID != nil {
		where = append(where, fmt.Sprintf("listing_id = $%d", argIdx))
		args = append(args, *f.ListingID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leases []models.Lease
	for rows.Next() {
		var l models.Lease
		if err := rows.Scan(&l.ID, &l.ListingID, &l.LandlordID, &l.TenantID, &l.TenantAttestRef, &l.Rent, &l.Deposit,
			&l.StartDate, &l.EndDate, &l.PaymentDay, &l.GraceDays, &l.TotalPayments, &l.PaidPayments,
			&l.LastPaymentDate, &l.LastPaymentIndex, &l.OverdueCount, &l.NextDueDate, &l.DisputeCount,
			&l.Status, &l.TerminationReason, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, nil
}
