package ports

import (
	"context"

	"github.com/kata/sweetshop/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // optional, defaults to "user"
}

// AuthResult pairs a freshly issued token with its owner.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// ResolveIdentity verifies a bearer token and returns the user it was
	// issued to, with the role embedded in the token.
	ResolveIdentity(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}
