package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/middleware"
	"github.com/nanaacademy/academy-server/internal/service"
)

// AnnouncementHandler exposes directory operations for announcements.
type AnnouncementHandler struct {
	Directory *service.DirectoryService
	Dashboard *service.DashboardService
}

func NewAnnouncementHandler(d *service.DirectoryService, dash *service.DashboardService) *AnnouncementHandler {
	return &AnnouncementHandler{Directory: d, Dashboard: dash}
}

type createAnnouncementReq struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	TargetRoles []string `json:"targetRoles"`
	ExpiryDate  *string  `json:"expiryDate"` // RFC 3339, optional
}

// Create writes a new announcement authored by the session user.
func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req createAnnouncementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}

	var expiry *time.Time
	if req.ExpiryDate != nil && *req.ExpiryDate != "" {
		t, err := time.Parse(time.RFC3339, *req.ExpiryDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "expiryDate must be RFC 3339"})
		}
		expiry = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, err := h.Directory.CreateAnnouncement(ctx, middleware.ActorFrom(c), service.AnnouncementInput{
		Title:       req.Title,
		Content:     req.Content,
		TargetRoles: req.TargetRoles,
		ExpiryDate:  expiry,
	})
	if err != nil {
		return writeError(c, err)
	}
	h.Dashboard.InvalidateStats(ctx)
	return c.JSON(http.StatusCreated, echo.Map{"announcementId": id})
}

// List returns a page of announcements, newest first by default.
func (h *AnnouncementHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	anns, err := h.Directory.ListAnnouncements(ctx, listOptions(c, "date_posted"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"announcements": anns, "count": len(anns)})
}

// Get returns one announcement by id.
func (h *AnnouncementHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Directory.GetAnnouncement(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Update merges the posted fields into the announcement.
func (h *AnnouncementHandler) Update(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.UpdateAnnouncement(ctx, c.Param("id"), fields); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete soft-deletes the announcement.
func (h *AnnouncementHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.DeleteAnnouncement(ctx, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	h.Dashboard.InvalidateStats(ctx)
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
