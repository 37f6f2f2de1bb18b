package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// VerificationRepo implements ports.VerificationRepository with pgx.
type VerificationRepo struct {
	db *DB
}

// NewVerificationRepo creates a new VerificationRepo.
func NewVerificationRepo(db *DB) *VerificationRepo {
	return &VerificationRepo{db: db}
}

// Create inserts a verification.
func (r *VerificationRepo) Create(ctx context.Context, v *domain.Verification) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO verifications (id, zone_id, image_url, verified_by, notes, verified_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.ZoneID, v.ImageURL, v.VerifiedBy, v.Notes, v.VerifiedAt)
	return mapErr(err)
}

// List returns all verifications, newest first.
func (r *VerificationRepo) List(ctx context.Context) ([]domain.Verification, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, zone_id, image_url, verified_by, notes, verified_at
		FROM verifications
		ORDER BY verified_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Verification, error) {
		var v domain.Verification
		err := row.Scan(&v.ID, &v.ZoneID, &v.ImageURL, &v.VerifiedBy, &v.Notes, &v.VerifiedAt)
		return v, err
	})
}

// Delete removes a verification. Missing rows are not an error.
func (r *VerificationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM verifications WHERE id = $1`, id)
	return mapErr(err)
}
