package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// AnalyticsHandler serves task statistics for the caller.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Summary handles GET /analytics/summary.
//
// @Summary      Task summary
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.TaskSummary
// @Failure      401  {object}  errorResponse
// @Router       /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	summary, err := h.service.Summary(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
