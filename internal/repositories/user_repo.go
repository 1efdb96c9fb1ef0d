package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rental-marketplace/backend/internal/models"
)

type UserRepo struct {
	db DBTX
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: pool}
}

// UpsertByAttestRef registers the user on first sight of their attestation
// credential and refreshes the handle on subsequent logins.
func (r *UserRepo) UpsertByAttestRef(ctx context.Context, attestRef, handle string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (attest_ref, handle)
		VALUES ($1, $2)
		ON CONFLICT (attest_ref) DO UPDATE SET handle = COALESCE(NULLIF(EXCLUDED.handle, ''), users.handle)
		RETURNING id, attest_ref, handle, created_at
	`, attestRef, handle).Scan(&u.ID, &u.AttestRef, &u.Handle, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, attest_ref, handle, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.AttestRef, &u.Handle, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
