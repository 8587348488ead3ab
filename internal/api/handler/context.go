package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// currentUser returns the user injected by the Auth middleware. A nil user
// means the route was mounted without Auth, which is treated as 401 rather
// than a panic further down.
func currentUser(c echo.Context) (*domain.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil, domain.Unauthorized("Not authenticated")
	}
	return u, nil
}

// taskIDParam parses the :id path parameter.
func taskIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "id must be an integer")
	}
	return id, nil
}
