package ports

import (
	"context"
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
)

// RegisterInput carries the data needed to create an account. Role is not
// part of the input: self-registration always produces a regular user.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Name     string
}

// LoginInput carries login credentials. Identifier may be a username or an
// email address. RememberMe extends the token lifetime.
type LoginInput struct {
	Identifier string
	Password   string
	RememberMe bool
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// Logout revokes the given token until its natural expiry.
	Logout(ctx context.Context, token string) error
}
