package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openshelf/library-system/internal/core/ports"
)

// ctxPrincipal extracts the principal injected by the Auth middleware and
// fast-fails before any service call: both claims must be present, their
// presence proves the middleware ran. The principal is passed explicitly
// into the core; nothing below the transport reads ambient session state.
func ctxPrincipal(c echo.Context) (ports.Principal, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return ports.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return ports.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing subject")
	}

	return ports.Principal{UserID: userID, Role: role}, nil
}
