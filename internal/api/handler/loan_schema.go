package handler

import (
	"time"

	"github.com/openshelf/library-system/internal/core/domain"
)

type issueLoanRequest struct {
	UserID string `json:"user_id" validate:"required"`
	BookID string `json:"book_id" validate:"required"`
}

type loanResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Fine       float64    `json:"fine"`
	Status     string     `json:"status"`
}

type listLoansResponse struct {
	Data  []loanResponse `json:"data"`
	Total int            `json:"total"`
}

func toLoanResponse(l *domain.Loan) loanResponse {
	return loanResponse{
		ID:         l.ID,
		UserID:     l.UserID,
		BookID:     l.BookID,
		IssueDate:  l.IssueDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Fine:       l.Fine,
		Status:     string(l.Status),
	}
}

func toLoanListResponse(loans []*domain.Loan) listLoansResponse {
	resp := listLoansResponse{Data: make([]loanResponse, 0, len(loans)), Total: len(loans)}
	for _, l := range loans {
		resp.Data = append(resp.Data, toLoanResponse(l))
	}
	return resp
}

// --- Dashboard responses ---

type adminDashboardResponse struct {
	TotalBooks   int64          `json:"total_books"`
	TotalUsers   int64          `json:"total_users"`
	IssuedCount  int64          `json:"issued_count"`
	OverdueCount int64          `json:"overdue_count"`
	RecentLoans  []loanResponse `json:"recent_loans"`
}

type userDashboardResponse struct {
	Loans          []loanResponse `json:"loans"`
	IssuedCount    int            `json:"issued_count"`
	OverdueCount   int            `json:"overdue_count"`
	ReturnedCount  int            `json:"returned_count"`
	TotalFine      float64        `json:"total_fine"`
	TotalBooks     int64          `json:"total_books"`
	AvailableBooks int64          `json:"available_books"`
	DueDays        int            `json:"due_days"`
	FinePerDay     float64        `json:"fine_per_day"`
}
