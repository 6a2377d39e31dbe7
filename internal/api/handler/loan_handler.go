package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// LoanHandler handles HTTP requests for the lending ledger.
type LoanHandler struct {
	lending ports.LendingService
}

func NewLoanHandler(lending ports.LendingService) *LoanHandler {
	return &LoanHandler{lending: lending}
}

// Create handles POST /v1/loans: admin-assisted issue for an explicit user.
//
// @Summary      Issue a book to a user
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      issueLoanRequest  true  "Target user and book"
// @Success      201   {object}  loanResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/loans [post]
func (h *LoanHandler) Create(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req issueLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	loan, err := h.lending.IssueFor(c.Request().Context(), principal, req.UserID, req.BookID)
	if err != nil {
		return err
	}

	metrics.LoansIssuedTotal.Inc()
	return c.JSON(http.StatusCreated, toLoanResponse(loan))
}

// Return handles POST /v1/loans/:id/return.
//
// @Summary      Return an issued loan
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Loan ID"
// @Success      200  {object}  loanResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/loans/{id}/return [post]
func (h *LoanHandler) Return(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	loan, err := h.lending.Return(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return err
	}

	metrics.LoansReturnedTotal.WithLabelValues(strconv.FormatBool(loan.Fine > 0)).Inc()
	if loan.Fine > 0 {
		metrics.FinesAssessedTotal.Add(loan.Fine)
	}

	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

// List handles GET /v1/loans: the admin report, newest first.
//
// @Summary      List all loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Param        status   query     string  false  "Filter by status (issued or returned)"
// @Param        user_id  query     string  false  "Filter by user"
// @Param        limit    query     int     false  "Cap on returned rows"
// @Success      200      {object}  listLoansResponse
// @Failure      403      {object}  errorResponse
// @Router       /v1/loans [get]
func (h *LoanHandler) List(c echo.Context) error {
	filter := ports.ListLoansFilter{
		UserID: c.QueryParam("user_id"),
		Status: domain.LoanStatus(c.QueryParam("status")),
	}
	if limit, err := strconv.Atoi(c.QueryParam("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	loans, err := h.lending.ListLoans(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toLoanListResponse(loans))
}

// ListMine handles GET /v1/loans/me: the caller's own loan history.
//
// @Summary      List your own loans
// @Tags         loans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listLoansResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/loans/me [get]
func (h *LoanHandler) ListMine(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	loans, err := h.lending.ListUserLoans(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toLoanListResponse(loans))
}
