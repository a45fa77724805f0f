package ports

import (
	"context"
	"time"

	"github.com/kata/sweetshop/internal/core/domain"
)

// UserRepository defines persistence for registered users.
type UserRepository interface {
	// Create stores u, fills its ID and returns domain.ErrUserExists when the
	// email is already taken.
	Create(ctx context.Context, u *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// TokenRevoker remembers tokens that were logged out before they expired.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
