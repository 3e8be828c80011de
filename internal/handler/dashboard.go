package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/middleware"
	"github.com/nanaacademy/academy-server/internal/service"
)

// DashboardHandler serves the admin dashboard payload.
type DashboardHandler struct {
	Dashboard *service.DashboardService
}

func NewDashboardHandler(d *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: d}
}

// Get assembles the counts and recent-record sections. The route is
// admin-gated by middleware; the service re-checks the role.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	d, err := h.Dashboard.Load(ctx, middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	resp := echo.Map{
		"stats":         d.Stats,
		"students":      d.Students,
		"teachers":      d.Teachers,
		"announcements": d.Announcements,
	}
	if len(d.SectionErrors) > 0 {
		resp["sectionErrors"] = d.SectionErrors
	}
	return c.JSON(http.StatusOK, resp)
}
