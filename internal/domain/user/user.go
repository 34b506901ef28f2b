// Package user holds account identity used for request authorization and
// customer/vendor snapshots.
package user

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a user lookup misses.
var ErrNotFound = errors.New("user not found")

// Role classifies what an account may do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleStaff    Role = "staff"
)

// User is one registered account. Vendors own catalog entities; customers own
// carts and orders; staff may administer order statuses.
type User struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
	Role  Role
}

// IsStaff reports whether the account has the operator role.
func (u *User) IsStaff() bool { return u.Role == RoleStaff }

// Repository provides read access to accounts.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// APIKey holds the identity data attached to a validated API key.
type APIKey struct {
	ID      uuid.UUID
	KeyHash string
	UserID  uuid.UUID
}

// APIKeyRepository provides lookup of API keys by their HMAC-SHA256 hash.
type APIKeyRepository interface {
	FindByHash(ctx context.Context, hash string) (*APIKey, error)
}
