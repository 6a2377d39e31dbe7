package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// AddBookInput carries all data needed to create a catalog entry.
type AddBookInput struct {
	Title     string
	Author    string
	ISBN      string
	Publisher string
	Category  string
	Copies    int
}

// EditBookInput updates a catalog entry. TotalCopies is the new total; the
// delta against the previous total is applied to the available count.
type EditBookInput struct {
	ID          string
	Title       string
	Author      string
	ISBN        string
	Publisher   string
	Category    string
	TotalCopies int
}

// CatalogService defines use-case operations on the book catalog.
type CatalogService interface {
	AddBook(ctx context.Context, input AddBookInput) (*domain.Book, error)
	EditBook(ctx context.Context, input EditBookInput) (*domain.Book, error)
	// DeleteBook removes a book unless it has active issued copies.
	DeleteBook(ctx context.Context, id string) error
	// ListBooks searches the catalog; an empty query lists everything
	// ordered by title.
	ListBooks(ctx context.Context, query string) ([]*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
}
