package domain

import (
	"errors"
	"time"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusIssued   LoanStatus = "issued"
	LoanStatusReturned LoanStatus = "returned"
)

const (
	// DueDays is the fixed loan period from issue to due date.
	DueDays = 14
	// FinePerDay is charged per calendar day past the due date.
	FinePerDay = 5.0
)

var ErrLoanNotFound = errors.New("loan not found")
var ErrAlreadyIssued = errors.New("book already issued to this user")
var ErrAlreadyReturned = errors.New("loan already returned")

// Loan links one user and one book. A loan is mutated exactly once, at
// return time; a fresh issuance of the same title creates a new loan.
type Loan struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Fine       float64    `json:"fine"`
	Status     LoanStatus `json:"status"`
}

// Overdue reports whether an issued loan is past due at the given instant.
// Overdue-ness is always derived; it is never persisted as a status.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Status == LoanStatusIssued && l.DueDate.Before(now)
}

// FineFor computes the late fine for a loan due at due and returned at
// returned. Only calendar dates count: returning any time on the due date
// is free, each full day after costs FinePerDay.
func FineFor(due, returned time.Time) float64 {
	dueDay := truncateToDay(due)
	returnedDay := truncateToDay(returned)
	if !returnedDay.After(dueDay) {
		return 0
	}
	lateDays := int(returnedDay.Sub(dueDay).Hours() / 24)
	return float64(lateDays) * FinePerDay
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
