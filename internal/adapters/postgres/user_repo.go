package postgres

import (
	"context"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// UserRepo implements ports.UserRepository with pgx.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a user. A taken email yields domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	return mapErr(err)
}

// GetByID returns a user with the IDs of the communities they belong to.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, "u.id = $1", id)
}

// GetByEmail returns a user by (lowercase) email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, "u.email = $1", email)
}

func (r *UserRepo) get(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.Pool.QueryRow(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.created_at,
		       COALESCE(array_agg(m.community_id::text) FILTER (WHERE m.community_id IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN community_members m ON m.user_id = u.id
		WHERE `+where+`
		GROUP BY u.id
	`, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.Communities)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}
