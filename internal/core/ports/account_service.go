package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// AccountService defines admin operations on user accounts.
type AccountService interface {
	// ListUsers returns all accounts ordered by username.
	ListUsers(ctx context.Context) ([]*domain.User, error)
	// ToggleActive flips the target's active flag. Admin accounts cannot be
	// deactivated.
	ToggleActive(ctx context.Context, userID string) (*domain.User, error)
}
