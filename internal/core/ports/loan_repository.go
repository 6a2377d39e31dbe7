package ports

import (
	"context"
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
)

// ListLoansFilter narrows loan listings. Zero values mean no filter.
type ListLoansFilter struct {
	UserID string
	BookID string
	Status domain.LoanStatus
	// Limit caps the number of rows returned, newest issue first. 0 = all.
	Limit int
}

// LoanRepository defines persistence for the lending ledger. Issue and
// Return are the two atomic units of the system: each commits a loan write
// and the matching book copy-count change together, or neither.
type LoanRepository interface {
	// Issue inserts the loan and decrements the book's available copies in
	// one transaction. It fails with domain.ErrNoCopiesAvailable when no
	// copy can be claimed, and with domain.ErrAlreadyIssued when the user
	// already holds an active loan on the book.
	Issue(ctx context.Context, loan *domain.Loan) (*domain.Loan, error)
	// Return marks an issued loan returned with the given date and fine and
	// increments the book's available copies (capped at total) in one
	// transaction. It fails with domain.ErrAlreadyReturned when the loan is
	// not in the issued state.
	Return(ctx context.Context, loanID string, returnedAt time.Time, fine float64) error
	FindByID(ctx context.Context, id string) (*domain.Loan, error)
	// FindActive retrieves the issued loan for a (user, book) pair, if any.
	FindActive(ctx context.Context, userID, bookID string) (*domain.Loan, error)
	// List returns loans matching filter, ordered by issue date descending.
	List(ctx context.Context, filter ListLoansFilter) ([]*domain.Loan, error)
	CountIssued(ctx context.Context) (int64, error)
	// CountIssuedByBook counts active loans referencing the book.
	CountIssuedByBook(ctx context.Context, bookID string) (int64, error)
	// CountOverdue counts issued loans whose due date lies before now.
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}
