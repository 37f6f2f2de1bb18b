package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// CommunityRepo implements ports.CommunityRepository with pgx.
type CommunityRepo struct {
	db *DB
}

// NewCommunityRepo creates a new CommunityRepo.
func NewCommunityRepo(db *DB) *CommunityRepo {
	return &CommunityRepo{db: db}
}

// Create inserts the community and its creator's membership in one transaction.
func (r *CommunityRepo) Create(ctx context.Context, c *domain.Community) error {
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO communities (id, name, description, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, c.ID, c.Name, c.Description, c.CreatedBy, c.CreatedAt); err != nil {
			return fmt.Errorf("insert community: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO community_members (community_id, user_id) VALUES ($1, $2)
		`, c.ID, c.CreatedBy); err != nil {
			return fmt.Errorf("enrol creator: %w", err)
		}
		return nil
	})
	return mapErr(err)
}

const communityColumns = `
	c.id, c.name, c.description, c.created_by, c.created_at, c.updated_at,
	(SELECT count(*) FROM community_members m WHERE m.community_id = c.id),
	(SELECT count(*) FROM green_zones z WHERE z.community_id = c.id)`

func scanCommunity(row pgx.Row) (*domain.Community, error) {
	var c domain.Community
	if err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		&c.MemberCount, &c.ZoneCount,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID returns a community with its members and zones.
func (r *CommunityRepo) GetByID(ctx context.Context, id string) (*domain.Community, error) {
	c, err := scanCommunity(r.db.Pool.QueryRow(ctx,
		`SELECT `+communityColumns+` FROM communities c WHERE c.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT u.id, u.name, u.email
		FROM community_members m JOIN users u ON u.id = m.user_id
		WHERE m.community_id = $1
		ORDER BY m.joined_at
	`, id)
	if err != nil {
		return nil, err
	}
	c.Members, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserRef, error) {
		var u domain.UserRef
		err := row.Scan(&u.ID, &u.Name, &u.Email)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT id, name, coordinates, coverage_level, verified
		FROM green_zones WHERE community_id = $1
		ORDER BY created_at DESC
	`, id)
	if err != nil {
		return nil, err
	}
	c.Zones, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ZoneRef, error) {
		var z domain.ZoneRef
		err := row.Scan(&z.ID, &z.Name, &z.Coordinates, &z.CoverageLevel, &z.Verified)
		return z, err
	})
	if err != nil {
		return nil, fmt.Errorf("zones: %w", err)
	}
	return c, nil
}

// List returns all communities with member and zone counts, newest first.
func (r *CommunityRepo) List(ctx context.Context) ([]domain.Community, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+communityColumns+` FROM communities c ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	communities := []domain.Community{}
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		communities = append(communities, *c)
	}
	return communities, rows.Err()
}

// AddMember enrols a user. Existing members are left untouched; an unknown
// community yields domain.ErrNotFound.
func (r *CommunityRepo) AddMember(ctx context.Context, communityID, userID string) error {
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO community_members (community_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, communityID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE communities SET updated_at = now() WHERE id = $1`, communityID)
		return err
	})
	return mapErr(err)
}
