package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/middleware"
	"github.com/nanaacademy/academy-server/internal/service"
)

// ClassHandler exposes directory operations for class records. Classes
// have no login concerns; creation only needs an authenticated author.
type ClassHandler struct {
	Directory *service.DirectoryService
	Dashboard *service.DashboardService
}

func NewClassHandler(d *service.DirectoryService, dash *service.DashboardService) *ClassHandler {
	return &ClassHandler{Directory: d, Dashboard: dash}
}

type createClassReq struct {
	ClassName    string   `json:"className" validate:"required"`
	Level        string   `json:"level"`
	TeacherID    string   `json:"teacherId"`
	AcademicYear string   `json:"academicYear"`
	StudentIDs   []string `json:"studentIds"`
}

// Create writes a new class record authored by the session user.
func (h *ClassHandler) Create(c echo.Context) error {
	var req createClassReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "className is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, err := h.Directory.CreateClass(ctx, middleware.ActorFrom(c), service.ClassInput{
		ClassName:    req.ClassName,
		Level:        req.Level,
		TeacherID:    req.TeacherID,
		AcademicYear: req.AcademicYear,
		StudentIDs:   req.StudentIDs,
	})
	if err != nil {
		return writeError(c, err)
	}
	h.Dashboard.InvalidateStats(ctx)
	return c.JSON(http.StatusCreated, echo.Map{"classId": id})
}

// List returns a page of classes, alphabetical by name by default.
func (h *ClassHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	opts := listOptions(c, "class_name")
	if c.QueryParam("desc") == "" {
		opts.Desc = false // alphabetical unless asked otherwise
	}
	classes, err := h.Directory.ListClasses(ctx, opts)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"classes": classes, "count": len(classes)})
}

// Get returns one class by id.
func (h *ClassHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cl, err := h.Directory.GetClass(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

// Update merges the posted fields into the class record.
func (h *ClassHandler) Update(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.UpdateClass(ctx, c.Param("id"), fields); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete soft-deletes the class record.
func (h *ClassHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.DeleteClass(ctx, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	h.Dashboard.InvalidateStats(ctx)
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
