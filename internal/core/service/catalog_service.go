package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// CatalogService implements book catalog operations and the copy-count
// accounting that goes with them.
type CatalogService struct {
	books  ports.BookRepository
	loans  ports.LoanRepository
	logger zerolog.Logger
}

func NewCatalogService(books ports.BookRepository, loans ports.LoanRepository, logger zerolog.Logger) *CatalogService {
	return &CatalogService{books: books, loans: loans, logger: logger}
}

// AddBook creates a catalog entry with all copies available.
func (s *CatalogService) AddBook(ctx context.Context, input ports.AddBookInput) (*domain.Book, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	if title == "" || author == "" {
		return nil, domain.ErrMissingFields
	}

	copies := input.Copies
	if copies < 1 {
		copies = 1
	}

	book := &domain.Book{
		Title:           title,
		Author:          author,
		ISBN:            strings.TrimSpace(input.ISBN),
		Publisher:       strings.TrimSpace(input.Publisher),
		Category:        strings.TrimSpace(input.Category),
		TotalCopies:     copies,
		AvailableCopies: copies,
		CreatedAt:       time.Now().UTC(),
	}

	created, err := s.books.Create(ctx, book)
	if err != nil {
		s.logger.Error().Err(err).Str("title", title).Msg("failed to add book")
		return nil, err
	}

	s.logger.Info().Str("book_id", created.ID).Str("title", title).Int("copies", copies).Msg("book added")
	return created, nil
}

// EditBook updates fields and applies the total-copies delta to the
// available count, floored at zero. Copies already out on loan are not
// recalled by shrinking the total.
func (s *CatalogService) EditBook(ctx context.Context, input ports.EditBookInput) (*domain.Book, error) {
	book, err := s.books.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	if title == "" || author == "" {
		return nil, domain.ErrMissingFields
	}

	newTotal := input.TotalCopies
	if newTotal < 1 {
		newTotal = 1
	}

	diff := newTotal - book.TotalCopies
	book.Title = title
	book.Author = author
	book.ISBN = strings.TrimSpace(input.ISBN)
	book.Publisher = strings.TrimSpace(input.Publisher)
	book.Category = strings.TrimSpace(input.Category)
	book.TotalCopies = newTotal
	book.AvailableCopies = book.AvailableCopies + diff
	if book.AvailableCopies < 0 {
		book.AvailableCopies = 0
	}

	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}

	s.logger.Info().Str("book_id", book.ID).Int("total_copies", newTotal).Msg("book updated")
	return book, nil
}

// DeleteBook removes a book unless copies are still out on loan.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.books.FindByID(ctx, id); err != nil {
		return err
	}

	active, err := s.loans.CountIssuedByBook(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrBookHasActiveLoans
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("book_id", id).Msg("book deleted")
	return nil
}

func (s *CatalogService) ListBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	return s.books.Search(ctx, strings.TrimSpace(query))
}

func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.FindByID(ctx, id)
}
