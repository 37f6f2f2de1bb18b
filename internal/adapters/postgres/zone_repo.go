package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// ZoneRepo implements ports.GreenZoneRepository with pgx.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

// Create inserts a zone. An unknown community or creator yields domain.ErrNotFound.
func (r *ZoneRepo) Create(ctx context.Context, z *domain.GreenZone) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO green_zones (id, name, coordinates, coverage_level, verified, community_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, z.ID, z.Name, []byte(z.Coordinates), string(z.CoverageLevel), z.Verified,
		nullable(z.CommunityID), nullable(z.CreatedByID), z.CreatedAt)
	return mapErr(err)
}

const zoneSelect = `
	SELECT z.id, z.name, z.coordinates, z.coverage_level, z.verified, z.created_at,
	       c.id, c.name, u.id, u.name, u.email
	FROM green_zones z
	LEFT JOIN communities c ON c.id = z.community_id
	LEFT JOIN users u ON u.id = z.created_by`

func scanZone(row pgx.Row) (*domain.GreenZone, error) {
	var (
		z                        domain.GreenZone
		communityID, communityNm *string
		userID, userName, email  *string
	)
	if err := row.Scan(
		&z.ID, &z.Name, &z.Coordinates, &z.CoverageLevel, &z.Verified, &z.CreatedAt,
		&communityID, &communityNm, &userID, &userName, &email,
	); err != nil {
		return nil, err
	}
	if communityID != nil {
		z.CommunityID = *communityID
		z.Community = &domain.CommunityRef{ID: *communityID, Name: deref(communityNm)}
	}
	if userID != nil {
		z.CreatedByID = *userID
		z.CreatedBy = &domain.UserRef{ID: *userID, Name: deref(userName), Email: deref(email)}
	}
	return &z, nil
}

// GetByID returns a zone with its community and creator references.
func (r *ZoneRepo) GetByID(ctx context.Context, id string) (*domain.GreenZone, error) {
	z, err := scanZone(r.db.Pool.QueryRow(ctx, zoneSelect+` WHERE z.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return z, nil
}

// List returns zones matching filter, newest first.
func (r *ZoneRepo) List(ctx context.Context, filter domain.ZoneFilter) ([]domain.GreenZone, error) {
	rows, err := r.db.Pool.Query(ctx, zoneSelect+`
		WHERE ($1::boolean IS NULL OR z.verified = $1)
		  AND ($2 = '' OR z.coverage_level = $2)
		ORDER BY z.created_at DESC
	`, filter.Verified, string(filter.CoverageLevel))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []domain.GreenZone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

// MarkVerified flags a zone as verified.
func (r *ZoneRepo) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE green_zones SET verified = true WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
