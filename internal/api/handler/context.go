package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pskiad17/FinancialOrganizer/internal/api/middleware"
)

// identity is the caller as established by the Auth middleware.
type identity struct {
	UserID   string
	Username string
	Role     string
}

// ctxIdentity extracts the claims injected by the Auth middleware. A missing
// user id means the route was mounted without Auth; reject with 401.
func ctxIdentity(c echo.Context) (identity, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	username, _ := c.Get(middleware.UsernameKey).(string)
	role, _ := c.Get(middleware.RoleKey).(string)
	return identity{UserID: userID, Username: username, Role: role}, nil
}
