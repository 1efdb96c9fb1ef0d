package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/models"
)

type EscrowRepo struct {
	db DBTX
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{db: pool}
}

func (r *EscrowRepo) WithTx(tx pgx.Tx) *EscrowRepo {
	return &EscrowRepo{db: tx}
}

const escrowColumns = `id, lease_id, amount, deducted, status, has_dispute,
	       release_to_landlord, release_to_tenant, landlord_confirmed, tenant_confirmed, settle_request`

func (r *EscrowRepo) scan(row pgx.Row) (*models.Escrow, error) {
	var e models.Escrow
	var settleBytes []byte
	err := row.Scan(&e.ID, &e.LeaseID, &e.Amount, &e.Deducted, &e.Status, &e.HasDispute,
		&e.ReleaseToLandlord, &e.ReleaseToTenant, &e.LandlordConfirmed, &e.TenantConfirmed, &settleBytes)
	if err != nil {
		return nil, err
	}
	if len(settleBytes) > 0 {
		var req models.SettlementRequest
		if err := json.Unmarshal(settleBytes, &req); err == nil {
			e.SettleRequest = &req
		}
	}
	return &e, nil
}

func (r *EscrowRepo) Create(ctx context.Context, e *models.Escrow) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO escrows (lease_id, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, e.LeaseID, e.Amount, e.Status).Scan(&e.ID)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+escrowColumns+` FROM escrows WHERE id = $1`, id))
}

func (r *EscrowRepo) GetByLeaseID(ctx context.Context, leaseID uuid.UUID) (*models.Escrow, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+escrowColumns+` FROM escrows WHERE lease_id = $1`, leaseID))
}

// GetByLeaseIDForUpdate locks the escrow row. Every settlement operation is a
// read-modify-write of the confirmation flags, so racing callers serialize here.
func (r *EscrowRepo) GetByLeaseIDForUpdate(ctx context.Context, leaseID uuid.UUID) (*models.Escrow, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+escrowColumns+` FROM escrows WHERE lease_id = $1 FOR UPDATE`, leaseID))
}

// Update persists the full escrow state after a model transition.
func (r *EscrowRepo) Update(ctx context.Context, e *models.Escrow) error {
	var settleBytes []byte
	if e.SettleRequest != nil {
		settleBytes, _ = json.Marshal(e.SettleRequest)
	}
	_, err := r.db.Exec(ctx, `
		UPDATE escrows SET deducted = $1, status = $2, has_dispute = $3,
		       release_to_landlord = $4, release_to_tenant = $5,
		       landlord_confirmed = $6, tenant_confirmed = $7, settle_request = $8,
		       updated_at = now()
		WHERE id = $9
	`, e.Deducted, e.Status, e.HasDispute,
		e.ReleaseToLandlord, e.ReleaseToTenant,
		e.LandlordConfirmed, e.TenantConfirmed, settleBytes, e.ID)
	return err
}
