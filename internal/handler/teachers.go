package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/middleware"
	"github.com/nanaacademy/academy-server/internal/service"
)

// TeacherHandler exposes provisioning and directory operations for
// teacher records.
type TeacherHandler struct {
	Provisioning *service.ProvisioningService
	Directory    *service.DirectoryService
	Dashboard    *service.DashboardService
}

func NewTeacherHandler(p *service.ProvisioningService, d *service.DirectoryService, dash *service.DashboardService) *TeacherHandler {
	return &TeacherHandler{Provisioning: p, Directory: d, Dashboard: dash}
}

type createTeacherReq struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone"`
	Subjects        []string `json:"subjects"`
	AssignedClasses []string `json:"assignedClasses"`
	CreateLogin     bool     `json:"createLogin"`
	Password        string   `json:"password"`
}

// Create provisions a new teacher. Unlike students, a failed login
// sub-step aborts the whole request.
func (h *TeacherHandler) Create(c echo.Context) error {
	var req createTeacherReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a valid email are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res, err := h.Provisioning.ProvisionTeacher(ctx, middleware.ActorFrom(c), service.TeacherInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Subjects:        req.Subjects,
		AssignedClasses: req.AssignedClasses,
		CreateLogin:     req.CreateLogin,
		Password:        req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}
	h.Dashboard.InvalidateStats(ctx)
	return c.JSON(http.StatusCreated, provisionResp{
		RecordID:          res.RecordID,
		GeneratedPassword: res.GeneratedPassword,
		HasLogin:          res.HasLogin,
	})
}

// List returns a page of teachers.
func (h *TeacherHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	teachers, err := h.Directory.ListTeachers(ctx, listOptions(c, "date_joined"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"teachers": teachers, "count": len(teachers)})
}

// Get returns one teacher by id.
func (h *TeacherHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Directory.GetTeacher(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Update merges the posted fields into the teacher record.
func (h *TeacherHandler) Update(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.UpdateTeacher(ctx, c.Param("id"), fields); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete soft-deletes the teacher record.
func (h *TeacherHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.DeleteTeacher(ctx, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	h.Dashboard.InvalidateStats(ctx)
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
