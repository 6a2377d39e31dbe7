package domain

import (
	"errors"
	"time"
)

var ErrBookNotFound = errors.New("book not found")
var ErrNoCopiesAvailable = errors.New("no copies available")
var ErrBookHasActiveLoans = errors.New("book has active issued copies")

// Book is a catalog entry with shared copy accounting. AvailableCopies is
// always recoverable as TotalCopies minus the number of issued loans
// referencing the book; it only changes together with a loan write.
type Book struct {
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
