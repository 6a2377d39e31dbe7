package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// Principal identifies the acting user on an authenticated call. It is
// threaded explicitly through every operation that needs authorization;
// there is no ambient "current user".
type Principal struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}

// AdminDashboard aggregates the numbers shown on the admin landing page.
type AdminDashboard struct {
	TotalBooks   int64
	TotalUsers   int64
	IssuedCount  int64
	OverdueCount int64
	RecentLoans  []*domain.Loan
}

// UserDashboard aggregates a member's own lending state.
type UserDashboard struct {
	Loans          []*domain.Loan
	IssuedCount    int
	OverdueCount   int
	ReturnedCount  int
	TotalFine      float64
	TotalBooks     int64
	AvailableBooks int64
}

// LendingService is the core state machine: available → issued → returned.
type LendingService interface {
	// Issue creates a loan for the user and claims one copy of the book.
	Issue(ctx context.Context, userID, bookID string) (*domain.Loan, error)
	// IssueFor is the admin-assisted variant; it validates that both the
	// target user and the book exist before issuing.
	IssueFor(ctx context.Context, actor Principal, userID, bookID string) (*domain.Loan, error)
	// Return closes an issued loan, computing the late fine. Only an admin
	// or the loan's owner may return it.
	Return(ctx context.Context, actor Principal, loanID string) (*domain.Loan, error)
	// ListLoans is the admin report: all loans, newest first.
	ListLoans(ctx context.Context, filter ListLoansFilter) ([]*domain.Loan, error)
	// ListUserLoans returns the given user's full loan history.
	ListUserLoans(ctx context.Context, userID string) ([]*domain.Loan, error)
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
	UserDashboard(ctx context.Context, userID string) (*UserDashboard, error)
}
