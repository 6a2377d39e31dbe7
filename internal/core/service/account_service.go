package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// AccountService implements admin user management.
type AccountService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewAccountService(users ports.UserRepository, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, log: log}
}

func (s *AccountService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// ToggleActive flips the target's active flag. Admin accounts cannot be
// deactivated.
func (s *AccountService) ToggleActive(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	user.Active = !user.Active
	if err := s.users.SetActive(ctx, userID, user.Active); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Bool("active", user.Active).Msg("user status toggled")
	return user, nil
}
