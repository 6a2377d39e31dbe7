package handler

import (
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type createBookRequest struct {
	Title     string `json:"title"  validate:"required"`
	Author    string `json:"author" validate:"required"`
	ISBN      string `json:"isbn"`
	Publisher string `json:"publisher"`
	Category  string `json:"category"`
	Copies    int    `json:"copies" validate:"omitempty,min=1"`
}

type updateBookRequest struct {
	Title       string `json:"title"  validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn"`
	Publisher   string `json:"publisher"`
	Category    string `json:"category"`
	TotalCopies int    `json:"total_copies" validate:"omitempty,min=1"`
}

// bookResponse is owned by the transport layer so the JSON contract is not
// coupled to internal domain changes.
type bookResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	Category        string    `json:"category,omitempty"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
}

type listBooksResponse struct {
	Data  []bookResponse `json:"data"`
	Total int            `json:"total"`
}

func toBookResponse(b *domain.Book) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		Category:        b.Category,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt,
	}
}
