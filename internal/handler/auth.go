package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/auth"
	"github.com/nanaacademy/academy-server/internal/middleware"
	"github.com/nanaacademy/academy-server/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Sessions *service.SessionService
	Auth     *auth.Service
}

func NewAuthHandler(sessions *service.SessionService, a *auth.Service) *AuthHandler {
	return &AuthHandler{Sessions: sessions, Auth: a}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin teacher student"`
}

type loginResp struct {
	Token         string    `json:"token"`
	Expires       time.Time `json:"expires"`
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	Role          string    `json:"role"`
	RedirectTo    string    `json:"redirectTo"`
	EmailVerified bool      `json:"emailVerified"`
}

type resetReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmReq struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type verifyEmailReq struct {
	Token string `json:"token" validate:"required"`
}

// Login authenticates credentials against the selected role and returns
// an access token plus the dashboard path to redirect to.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and role are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Sessions.Login(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{
		Token:         res.Token,
		Expires:       res.ExpiresAt,
		UID:           res.UID,
		Email:         res.Email,
		DisplayName:   res.DisplayName,
		Role:          res.Role,
		RedirectTo:    res.RedirectTo,
		EmailVerified: res.EmailVerified,
	})
}

// Logout revokes the session behind the presented token; the token is
// rejected by the middleware from the next request on.
func (h *AuthHandler) Logout(c echo.Context) error {
	sid := middleware.SessionIDFrom(c)
	if sid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.Logout(ctx, sid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"redirectTo": service.PathLogin})
}

// Me returns the authenticated user's identity as seen by the middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"uid":   actor.UID,
		"email": actor.Email,
		"role":  actor.Role,
	})
}

// RequestPasswordReset queues a reset mail for the account. The handler
// surfaces classified errors so the form can tell "no such account" from
// "try later", matching the login form's messages.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	if err := h.Auth.SendPasswordReset(ctx, req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset email sent! Check your inbox."})
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req resetConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token and a password of at least 8 characters are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	if err := h.Auth.ConfirmPasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated. You can sign in now."})
}

// VerifyEmail consumes a verification token and marks the address
// confirmed.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	if err := h.Auth.ConfirmEmail(ctx, req.Token); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Email verified."})
}
