package service

// In-memory repository stubs shared by the service tests. They mirror the
// repository contracts, including the atomic issue/return behaviour of the
// real loan repository.

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneBook(b *domain.Book) *domain.Book {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

func cloneLoan(l *domain.Loan) *domain.Loan {
	if l == nil {
		return nil
	}
	clone := *l
	if l.ReturnDate != nil {
		rd := *l.ReturnDate
		clone.ReturnDate = &rd
	}
	return &clone
}

// --- users ---

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	created, err := r.Create(context.Background(), u)
	if err != nil {
		panic(err)
	}
	return created
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.seq++
		copy.ID = fmt.Sprintf("u%d", r.seq)
	}
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = active
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// --- books ---

type stubBookRepo struct {
	books map[string]*domain.Book
	seq   int
}

func newStubBookRepo() *stubBookRepo {
	return &stubBookRepo{books: make(map[string]*domain.Book)}
}

func (r *stubBookRepo) add(b *domain.Book) *domain.Book {
	created, err := r.Create(context.Background(), b)
	if err != nil {
		panic(err)
	}
	return created
}

func (r *stubBookRepo) Create(_ context.Context, book *domain.Book) (*domain.Book, error) {
	copy := cloneBook(book)
	if copy.ID == "" {
		r.seq++
		copy.ID = fmt.Sprintf("b%d", r.seq)
	}
	r.books[copy.ID] = cloneBook(copy)
	return copy, nil
}

func (r *stubBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	if b, ok := r.books[id]; ok {
		return cloneBook(b), nil
	}
	return nil, domain.ErrBookNotFound
}

func (r *stubBookRepo) FindByTitleAuthor(_ context.Context, title, author string) (*domain.Book, error) {
	for _, b := range r.books {
		if b.Title == title && b.Author == author {
			return cloneBook(b), nil
		}
	}
	return nil, domain.ErrBookNotFound
}

func (r *stubBookRepo) Update(_ context.Context, book *domain.Book) error {
	if _, ok := r.books[book.ID]; !ok {
		return domain.ErrBookNotFound
	}
	r.books[book.ID] = cloneBook(book)
	return nil
}

func (r *stubBookRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *stubBookRepo) Search(_ context.Context, query string) ([]*domain.Book, error) {
	q := strings.ToLower(query)
	out := make([]*domain.Book, 0, len(r.books))
	for _, b := range r.books {
		if q == "" ||
			strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.ISBN), q) {
			out = append(out, cloneBook(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *stubBookRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.books)), nil
}

func (r *stubBookRepo) CountAvailable(_ context.Context) (int64, error) {
	var n int64
	for _, b := range r.books {
		if b.AvailableCopies > 0 {
			n++
		}
	}
	return n, nil
}

// --- loans ---

// stubLoanRepo reproduces the real repository's atomic semantics: Issue and
// Return adjust the linked stubBookRepo's available count together with the
// loan write.
type stubLoanRepo struct {
	loans map[string]*domain.Loan
	books *stubBookRepo
	seq   int
}

func newStubLoanRepo(books *stubBookRepo) *stubLoanRepo {
	return &stubLoanRepo{loans: make(map[string]*domain.Loan), books: books}
}

func (r *stubLoanRepo) add(l *domain.Loan) *domain.Loan {
	copy := cloneLoan(l)
	if copy.ID == "" {
		r.seq++
		copy.ID = fmt.Sprintf("l%d", r.seq)
	}
	r.loans[copy.ID] = cloneLoan(copy)
	return copy
}

func (r *stubLoanRepo) Issue(_ context.Context, loan *domain.Loan) (*domain.Loan, error) {
	for _, l := range r.loans {
		if l.UserID == loan.UserID && l.BookID == loan.BookID && l.Status == domain.LoanStatusIssued {
			return nil, domain.ErrAlreadyIssued
		}
	}

	book, ok := r.books.books[loan.BookID]
	if !ok || book.AvailableCopies <= 0 {
		return nil, domain.ErrNoCopiesAvailable
	}
	book.AvailableCopies--

	return r.add(loan), nil
}

func (r *stubLoanRepo) Return(_ context.Context, loanID string, returnedAt time.Time, fine float64) error {
	loan, ok := r.loans[loanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if loan.Status != domain.LoanStatusIssued {
		return domain.ErrAlreadyReturned
	}

	loan.Status = domain.LoanStatusReturned
	rd := returnedAt
	loan.ReturnDate = &rd
	loan.Fine = fine

	if book, ok := r.books.books[loan.BookID]; ok && book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
	}
	return nil
}

func (r *stubLoanRepo) FindByID(_ context.Context, id string) (*domain.Loan, error) {
	if l, ok := r.loans[id]; ok {
		return cloneLoan(l), nil
	}
	return nil, domain.ErrLoanNotFound
}

func (r *stubLoanRepo) FindActive(_ context.Context, userID, bookID string) (*domain.Loan, error) {
	for _, l := range r.loans {
		if l.UserID == userID && l.BookID == bookID && l.Status == domain.LoanStatusIssued {
			return cloneLoan(l), nil
		}
	}
	return nil, domain.ErrLoanNotFound
}

func (r *stubLoanRepo) List(_ context.Context, filter ports.ListLoansFilter) ([]*domain.Loan, error) {
	out := make([]*domain.Loan, 0, len(r.loans))
	for _, l := range r.loans {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.BookID != "" && l.BookID != filter.BookID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, cloneLoan(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *stubLoanRepo) CountIssued(_ context.Context) (int64, error) {
	var n int64
	for _, l := range r.loans {
		if l.Status == domain.LoanStatusIssued {
			n++
		}
	}
	return n, nil
}

func (r *stubLoanRepo) CountIssuedByBook(_ context.Context, bookID string) (int64, error) {
	var n int64
	for _, l := range r.loans {
		if l.BookID == bookID && l.Status == domain.LoanStatusIssued {
			n++
		}
	}
	return n, nil
}

func (r *stubLoanRepo) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, l := range r.loans {
		if l.Overdue(now) {
			n++
		}
	}
	return n, nil
}
