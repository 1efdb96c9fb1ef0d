package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/models"
)

type ListingRepo struct {
	db DBTX
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{db: pool}
}

func (r *ListingRepo) WithTx(tx pgx.Tx) *ListingRepo {
	return &ListingRepo{db: tx}
}

const listingColumns = `id, owner_id, property_attest_ref, address, rent, deposit, grace_days,
	       status, current_lease_id, total_leases, created_at, updated_at`

func (r *ListingRepo) scan(row pgx.Row) (*models.Listing, error) {
	var p models.Listing
	err := row.Scan(&p.ID, &p.OwnerID, &p.PropertyAttestRef, &p.Address, &p.Rent, &p.Deposit, &p.GraceDays,
		&p.Status, &p.CurrentLeaseID, &p.TotalLeases, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ListingRepo) Create(ctx context.Context, p *models.Listing) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO listings (owner_id, property_attest_ref, address, rent, deposit, grace_days, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.OwnerID, p.PropertyAttestRef, p.Address, p.Rent, p.Deposit, p.GraceDays, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
}

// Update persists the mutable listing state after a model transition.
func (r *ListingRepo) Update(ctx context.Context, p *models.Listing) error {
	_, err := r.db.Exec(ctx, `
		UPDATE listings SET rent = $1, deposit = $2, grace_days = $3, status = $4,
		       current_lease_id = $5, total_leases = $6, updated_at = now()
		WHERE id = $7
	`, p.Rent, p.Deposit, p.GraceDays, p.Status, p.CurrentLeaseID, p.TotalLeases, p.ID)
	return err
}

type ListingFilter struct {
	OwnerID *uuid.UUID
	Status  *string
	MaxRent *int64
	Limit   int
	Offset  int
}

func (r *ListingRepo) List(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.OwnerID != nil {
		where = append(where, fmt.Sprintf("owner_id = $%d", argIdx))
		args = append(args, *f.OwnerID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.MaxRent != nil {
		where = append(where, fmt.Sprintf("rent <= $%d", argIdx))
		args = append(args, *f.MaxRent)
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

	var listings []models.Listing
	for rows.Next() {
		var p models.Listing
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.PropertyAttestRef, &p.Address, &p.Rent, &p.Deposit, &p.GraceDays,
			&p.Status, &p.CurrentLeaseID, &p.TotalLeases, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, p)
	}
	return listings, nil
}
