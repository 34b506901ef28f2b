package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/weddify/marketplace/internal/domain/user"
)

const (
	getUserByIDSQL = `SELECT id, name, email, phone, role FROM users WHERE id = $1`

	findAPIKeyByHashSQL = `SELECT id, key_hash, user_id FROM api_keys WHERE key_hash = $1`
)

var (
	_ user.Repository       = (*UserRepository)(nil)
	_ user.APIKeyRepository = (*UserRepository)(nil)
)

// UserRepository implements account and API key lookup backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID returns one account.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, getUserByIDSQL, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &u, nil
}

// FindByHash returns the API key row matching an HMAC-SHA256 hash.
func (r *UserRepository) FindByHash(ctx context.Context, hash string) (*user.APIKey, error) {
	var k user.APIKey
	err := r.pool.QueryRow(ctx, findAPIKeyByHashSQL, hash).
		Scan(&k.ID, &k.KeyHash, &k.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("finding api key: %w", err)
	}
	return &k, nil
}
