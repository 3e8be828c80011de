package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/middleware"
	"github.com/nanaacademy/academy-server/internal/repository"
	"github.com/nanaacademy/academy-server/internal/service"
)

// StudentHandler exposes provisioning and directory operations for
// student records.
type StudentHandler struct {
	Provisioning *service.ProvisioningService
	Directory    *service.DirectoryService
	Dashboard    *service.DashboardService
}

func NewStudentHandler(p *service.ProvisioningService, d *service.DirectoryService, dash *service.DashboardService) *StudentHandler {
	return &StudentHandler{Provisioning: p, Directory: d, Dashboard: dash}
}

type createStudentReq struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"dateOfBirth"`
	CurrentClass string `json:"currentClass"`
	ParentName   string `json:"parentName"`
	ParentPhone  string `json:"parentPhone"`
	ParentEmail  string `json:"parentEmail" validate:"omitempty,email"`
	StudentEmail string `json:"studentEmail" validate:"required,email"`
	HomeAddress  string `json:"homeAddress"`
	PhotoURL     string `json:"photoUrl"`
	CreateLogin  bool   `json:"createLogin"`
	Password     string `json:"password"`
}

type provisionResp struct {
	RecordID          string `json:"recordId"`
	GeneratedPassword string `json:"generatedPassword,omitempty"`
	HasLogin          bool   `json:"hasLogin"`
}

// Create provisions a new student, optionally with a login account.
func (h *StudentHandler) Create(c echo.Context) error {
	var req createStudentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "firstName, lastName and a valid studentEmail are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res, err := h.Provisioning.ProvisionStudent(ctx, middleware.ActorFrom(c), service.StudentInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		CurrentClass: req.CurrentClass,
		ParentName:   req.ParentName,
		ParentPhone:  req.ParentPhone,
		ParentEmail:  req.ParentEmail,
		StudentEmail: req.StudentEmail,
		HomeAddress:  req.HomeAddress,
		PhotoURL:     req.PhotoURL,
		CreateLogin:  req.CreateLogin,
		Password:     req.Password,
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

// List returns a page of students. Query parameters: order_by, desc,
// limit, include_inactive.
func (h *StudentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	students, err := h.Directory.ListStudents(ctx, listOptions(c, "date_enrolled"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"students": students, "count": len(students)})
}

// Get returns one student by id, active or not.
func (h *StudentHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Directory.GetStudent(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Update merges the posted fields into the student record.
func (h *StudentHandler) Update(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.UpdateStudent(ctx, c.Param("id"), fields); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete soft-deletes the student record.
func (h *StudentHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Directory.DeleteStudent(ctx, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	h.Dashboard.InvalidateStats(ctx)
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// listOptions parses the shared listing query parameters. The repository
// clamps the limit and whitelists order columns; unknown values fall back
// to defaults rather than erroring.
func listOptions(c echo.Context, defaultOrder string) repository.ListOptions {
	opts := repository.ListOptions{
		OrderBy:    defaultOrder,
		Desc:       true,
		ActiveOnly: true,
		Limit:      repository.MaxListLimit,
	}
	if v := c.QueryParam("order_by"); v != "" {
		opts.OrderBy = v
	}
	if v := c.QueryParam("desc"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Desc = b
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := c.QueryParam("include_inactive"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.ActiveOnly = !b
		}
	}
	return opts
}
