package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nanaacademy/academy-server/internal/auth"
	"github.com/nanaacademy/academy-server/internal/repository"
	"github.com/nanaacademy/academy-server/internal/service"
)

// writeError maps service and auth errors to an HTTP status and the
// user-facing message shown by the frontend forms. Anything unclassified
// collapses to a generic 500.
func writeError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	}
	var rm *service.RoleMismatchError
	if errors.As(err, &rm) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": rm.Error()})
	}

	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid email address format."})
	case errors.Is(err, auth.ErrDisabled):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "This account has been disabled."})
	case errors.Is(err, auth.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No account found with this email."})
	case errors.Is(err, auth.ErrWrongPassword):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Incorrect password."})
	case errors.Is(err, auth.ErrTooManyRequests):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many attempts. Please try again later."})
	case errors.Is(err, auth.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "An account with this email already exists."})
	case errors.Is(err, service.ErrUnprovisioned):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNoActor):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	case errors.Is(err, service.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrIDExhausted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "could not allocate a record id, please retry"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "record not found"})
	case errors.Is(err, repository.ErrDuplicateID):
		return c.JSON(http.StatusConflict, echo.Map{"error": "record id already in use"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
