// Package router wires HTTP routes to their handlers. Public routes
// (health, auth) take no middleware; everything under the admin group
// requires a valid token with the admin role.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/handler"
	"github.com/nanaacademy/academy-server/internal/middleware"
	"github.com/nanaacademy/academy-server/internal/model"
)

// Handlers collects every handler the router registers.
type Handlers struct {
	Auth          *handler.AuthHandler
	Students      *handler.StudentHandler
	Teachers      *handler.TeacherHandler
	Classes       *handler.ClassHandler
	Announcements *handler.AnnouncementHandler
	Dashboard     *handler.DashboardHandler
}

// Register mounts all routes on the Echo instance. The session checker
// backs revocation: protected routes reject tokens whose session row has
// been revoked.
func Register(e *echo.Echo, h Handlers, jwtSecret string, sessions middleware.SessionChecker) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated auth operations.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/reset", h.Auth.RequestPasswordReset)
	authGroup.POST("/reset/confirm", h.Auth.ConfirmPasswordReset)
	authGroup.POST("/verify-email", h.Auth.VerifyEmail)

	// Any authenticated role.
	session := e.Group("/v1")
	session.Use(middleware.JWTAuth(jwtSecret, sessions))
	session.GET("/me", h.Auth.Me)
	session.POST("/logout", h.Auth.Logout)

	// Directory and dashboard are the admin surface.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret, sessions))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.GET("/dashboard", h.Dashboard.Get)

	admin.POST("/students", h.Students.Create)
	admin.GET("/students", h.Students.List)
	admin.GET("/students/:id", h.Students.Get)
	admin.PATCH("/students/:id", h.Students.Update)
	admin.DELETE("/students/:id", h.Students.Delete)

	admin.POST("/teachers", h.Teachers.Create)
	admin.GET("/teachers", h.Teachers.List)
	admin.GET("/teachers/:id", h.Teachers.Get)
	admin.PATCH("/teachers/:id", h.Teachers.Update)
	admin.DELETE("/teachers/:id", h.Teachers.Delete)

	admin.POST("/classes", h.Classes.Create)
	admin.GET("/classes", h.Classes.List)
	admin.GET("/classes/:id", h.Classes.Get)
	admin.PATCH("/classes/:id", h.Classes.Update)
	admin.DELETE("/classes/:id", h.Classes.Delete)

	admin.POST("/announcements", h.Announcements.Create)
	admin.GET("/announcements", h.Announcements.List)
	admin.GET("/announcements/:id", h.Announcements.Get)
	admin.PATCH("/announcements/:id", h.Announcements.Update)
	admin.DELETE("/announcements/:id", h.Announcements.Delete)
}
