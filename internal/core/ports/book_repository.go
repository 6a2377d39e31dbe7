package ports

import (
	"context"

	"github.com/openshelf/library-system/internal/core/domain"
)

// BookRepository defines persistence operations for the catalog.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	// FindByTitleAuthor retrieves an exact (title, author) match; used by the
	// bulk importer to skip duplicates.
	FindByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id string) error
	// Search performs a case-insensitive substring match over title, author
	// and isbn. An empty query returns all books ordered by title.
	Search(ctx context.Context, query string) ([]*domain.Book, error)
	Count(ctx context.Context) (int64, error)
	// CountAvailable counts books with at least one available copy.
	CountAvailable(ctx context.Context) (int64, error)
}
