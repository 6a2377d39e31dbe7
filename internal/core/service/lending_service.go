package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

const recentLoansLimit = 8

// LendingService implements the issue/return state machine. The repository
// is responsible for making each transition and its book copy-count change
// one atomic unit; this service owns ordering, authorization and the fine
// rule.
type LendingService struct {
	loans ports.LoanRepository
	books ports.BookRepository
	users ports.UserRepository
	log   zerolog.Logger
}

func NewLendingService(loans ports.LoanRepository, books ports.BookRepository, users ports.UserRepository, log zerolog.Logger) *LendingService {
	return &LendingService{loans: loans, books: books, users: users, log: log}
}

// Issue creates a loan for userID on bookID and claims one copy.
func (s *LendingService) Issue(ctx context.Context, userID, bookID string) (*domain.Loan, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies <= 0 {
		return nil, domain.ErrNoCopiesAvailable
	}

	if _, err := s.loans.FindActive(ctx, userID, bookID); err == nil {
		return nil, domain.ErrAlreadyIssued
	} else if !errors.Is(err, domain.ErrLoanNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	loan := &domain.Loan{
		UserID:    userID,
		BookID:    bookID,
		IssueDate: now,
		DueDate:   now.AddDate(0, 0, domain.DueDays),
		Status:    domain.LoanStatusIssued,
	}

	// The repository re-checks availability and the one-active-loan
	// constraint inside the transaction; the checks above only give early,
	// friendly failures.
	created, err := s.loans.Issue(ctx, loan)
	if err != nil {
		return nil, fmt.Errorf("issue loan: %w", err)
	}

	s.log.Info().
		Str("loan_id", created.ID).
		Str("user_id", userID).
		Str("book_id", bookID).
		Time("due_date", created.DueDate).
		Msg("book issued")

	return created, nil
}

// IssueFor issues a book to an explicit user on behalf of an admin.
func (s *LendingService) IssueFor(ctx context.Context, actor ports.Principal, userID, bookID string) (*domain.Loan, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Issue(ctx, userID, bookID)
}

// Return closes an issued loan. Only an admin or the loan's owner may
// return it. The fine counts calendar days past the due date only.
func (s *LendingService) Return(ctx context.Context, actor ports.Principal, loanID string) (*domain.Loan, error) {
	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && actor.UserID != loan.UserID {
		return nil, domain.ErrForbidden
	}

	if loan.Status != domain.LoanStatusIssued {
		return nil, domain.ErrAlreadyReturned
	}

	now := time.Now().UTC()
	fine := domain.FineFor(loan.DueDate, now)

	if err := s.loans.Return(ctx, loanID, now, fine); err != nil {
		return nil, fmt.Errorf("return loan: %w", err)
	}

	loan.ReturnDate = &now
	loan.Fine = fine
	loan.Status = domain.LoanStatusReturned

	s.log.Info().
		Str("loan_id", loanID).
		Str("user_id", loan.UserID).
		Float64("fine", fine).
		Msg("book returned")

	return loan, nil
}

// ListLoans is the admin report over the full ledger, newest issue first.
func (s *LendingService) ListLoans(ctx context.Context, filter ports.ListLoansFilter) ([]*domain.Loan, error) {
	return s.loans.List(ctx, filter)
}

// ListUserLoans returns one user's complete loan history.
func (s *LendingService) ListUserLoans(ctx context.Context, userID string) ([]*domain.Loan, error) {
	return s.loans.List(ctx, ports.ListLoansFilter{UserID: userID})
}

// AdminDashboard collects the library-wide numbers. Overdue counting uses
// the wall-clock instant, unlike the fine rule which is date-only.
func (s *LendingService) AdminDashboard(ctx context.Context) (*ports.AdminDashboard, error) {
	totalBooks, err := s.books.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.CountByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	issued, err := s.loans.CountIssued(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.loans.CountOverdue(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	recent, err := s.loans.List(ctx, ports.ListLoansFilter{Limit: recentLoansLimit})
	if err != nil {
		return nil, err
	}

	return &ports.AdminDashboard{
		TotalBooks:   totalBooks,
		TotalUsers:   totalUsers,
		IssuedCount:  issued,
		OverdueCount: overdue,
		RecentLoans:  recent,
	}, nil
}

// UserDashboard collects one member's lending state and the library totals
// shown alongside it.
func (s *LendingService) UserDashboard(ctx context.Context, userID string) (*ports.UserDashboard, error) {
	loans, err := s.loans.List(ctx, ports.ListLoansFilter{UserID: userID})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dash := &ports.UserDashboard{Loans: loans}
	for _, l := range loans {
		switch l.Status {
		case domain.LoanStatusIssued:
			dash.IssuedCount++
			if l.Overdue(now) {
				dash.OverdueCount++
			}
		case domain.LoanStatusReturned:
			dash.ReturnedCount++
		}
		if l.Fine > 0 {
			dash.TotalFine += l.Fine
		}
	}

	if dash.TotalBooks, err = s.books.Count(ctx); err != nil {
		return nil, err
	}
	if dash.AvailableBooks, err = s.books.CountAvailable(ctx); err != nil {
		return nil, err
	}

	return dash, nil
}
