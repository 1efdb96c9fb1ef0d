package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/models"
)

type DisputeRepo struct {
	db DBTX
}

func NewDisputeRepo(pool *pgxpool.Pool) *DisputeRepo {
	return &DisputeRepo{db: pool}
}

func (r *DisputeRepo) WithTx(tx pgx.Tx) *DisputeRepo {
	return &DisputeRepo{db: tx}
}

const disputeColumns = `id, lease_id, sequence, initiator_id, reason, status,
	       resolution, landlord_amount, tenant_amount, created_at, resolved_at`

func (r *DisputeRepo) scan(row pgx.Row) (*models.Dispute, error) {
	var d models.Dispute
	err := row.Scan(&d.ID, &d.LeaseID, &d.Sequence, &d.InitiatorID, &d.Reason, &d.Status,
		&d.Resolution, &d.LandlordAmount, &d.TenantAmount, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO disputes (lease_id, sequence, initiator_id, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, d.LeaseID, d.Sequence, d.InitiatorID, d.Reason, d.Status).Scan(&d.ID, &d.CreatedAt)
}

func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id))
}

func (r *DisputeRepo) GetOpenByLease(ctx context.Context, leaseID uuid.UUID) (*models.Dispute, error) {
	return r.scan(r.db.QueryRow(ctx, `
		SELECT `+disputeColumns+` FROM disputes
		WHERE lease_id = $1 AND status = 'open'
		ORDER BY sequence DESC LIMIT 1
	`, leaseID))
}

// Update persists the resolution fields.
func (r *DisputeRepo) Update(ctx context.Context, d *models.Dispute) error {
	_, err := r.db.Exec(ctx, `
		UPDATE disputes SET status = $1, resolution = $2, landlord_amount = $3,
		       tenant_amount = $4, resolved_at = $5
		WHERE id = $6
	`, d.Status, d.Resolution, d.LandlordAmount, d.TenantAmount, d.ResolvedAt, d.ID)
	return err
}

func (r *DisputeRepo) ListByLease(ctx context.Context, leaseID uuid.UUID) ([]models.Dispute, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE lease_id = $1 ORDER BY sequence ASC
	`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []models.Dispute
	for rows.Next() {
		var d models.Dispute
		if err := rows.Scan(&d.ID, &d.LeaseID, &d.Sequence, &d.InitiatorID, &d.Reason, &d.Status,
			&d.Resolution, &d.LandlordAmount, &d.TenantAmount, &d.CreatedAt, &d.ResolvedAt); err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
	}
	return disputes, nil
}
