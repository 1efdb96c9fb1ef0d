package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/models"
)

type ApplicationRepo struct {
	db DBTX
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{db: pool}
}

func (r *ApplicationRepo) WithTx(tx pgx.Tx) *ApplicationRepo {
	return &ApplicationRepo{db: tx}
}

const applicationColumns = `id, listing_id, applicant_id, tenant_attest_ref, offer_rent, offer_deposit,
	       message, rounds, last_actor_id, status, created_at, updated_at`

func (r *ApplicationRepo) Create(ctx context.Context, a *models.Application) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO applications (listing_id, applicant_id, tenant_attest_ref, offer_rent, offer_deposit, message, last_actor_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, a.ListingID, a.ApplicantID, a.TenantAttestRef, a.OfferRent, a.OfferDeposit, a.Message, a.LastActorID, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var a models.Application
	err := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id).
		Scan(&a.ID, &a.ListingID, &a.ApplicantID, &a.TenantAttestRef, &a.OfferRent, &a.OfferDeposit,
			&a.Message, &a.Rounds, &a.LastActorID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update persists the negotiation state after a counter-offer or transition.
func (r *ApplicationRepo) Update(ctx context.Context, a *models.Application) error {
	_, err := r.db.Exec(ctx, `
		UPDATE applications SET offer_rent = $1, offer_deposit = $2, rounds = $3,
		       last_actor_id = $4, status = $5, updated_at = now()
		WHERE id = $6
	`, a.OfferRent, a.OfferDeposit, a.Rounds, a.LastActorID, a.Status, a.ID)
	return err
}

type ApplicationFilter struct {
	ListingID   *uuid.UUID
	ApplicantID *uuid.UUID
	Status      *string
	Limit       int
	Offset      int
}

func (r *ApplicationRepo) List(ctx context.Context, f ApplicationFilter) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.ListingID != nil {
		where = append(where, fmt.Sprintf("listing_id = $%d", argIdx))
		args = append(args, *f.ListingID)
		argIdx++
	}
	if f.ApplicantID != nil {
		where = append(where, fmt.Sprintf("applicant_id = $%d", argIdx))
		args = append(args, *f.ApplicantID)
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

	var apps []models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.ListingID, &a.ApplicantID, &a.TenantAttestRef, &a.OfferRent, &a.OfferDeposit,
			&a.Message, &a.Rounds, &a.LastActorID, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, nil
}
