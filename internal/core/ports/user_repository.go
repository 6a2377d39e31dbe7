package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns all users ordered by username.
	List(ctx context.Context) ([]*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	// CountByRole counts accounts holding the given role.
	CountByRole(ctx context.Context, role string) (int64, error)
}
