package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/library-system/internal/core/domain"
	"github.com/openshelf/library-system/internal/core/ports"
)

// DashboardHandler serves the aggregated numbers behind the admin and user
// landing pages.
type DashboardHandler struct {
	lending ports.LendingService
}

func NewDashboardHandler(lending ports.LendingService) *DashboardHandler {
	return &DashboardHandler{lending: lending}
}

// Admin handles GET /v1/dashboard (admin only).
//
// @Summary      Library-wide dashboard numbers
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminDashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	dash, err := h.lending.AdminDashboard(c.Request().Context())
	if err != nil {
		return err
	}

	recent := make([]loanResponse, 0, len(dash.RecentLoans))
	for _, l := range dash.RecentLoans {
		recent = append(recent, toLoanResponse(l))
	}

	return c.JSON(http.StatusOK, adminDashboardResponse{
		TotalBooks:   dash.TotalBooks,
		TotalUsers:   dash.TotalUsers,
		IssuedCount:  dash.IssuedCount,
		OverdueCount: dash.OverdueCount,
		RecentLoans:  recent,
	})
}

// Me handles GET /v1/dashboard/me.
//
// @Summary      Your own lending dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userDashboardResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/dashboard/me [get]
func (h *DashboardHandler) Me(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	dash, err := h.lending.UserDashboard(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}

	loans := make([]loanResponse, 0, len(dash.Loans))
	for _, l := range dash.Loans {
		loans = append(loans, toLoanResponse(l))
	}

	return c.JSON(http.StatusOK, userDashboardResponse{
		Loans:          loans,
		IssuedCount:    dash.IssuedCount,
		OverdueCount:   dash.OverdueCount,
		ReturnedCount:  dash.ReturnedCount,
		TotalFine:      dash.TotalFine,
		TotalBooks:     dash.TotalBooks,
		AvailableBooks: dash.AvailableBooks,
		DueDays:        domain.DueDays,
		FinePerDay:     domain.FinePerDay,
	})
}
