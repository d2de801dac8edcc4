package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/access"
	"github.com/opencivic/records-portal/internal/lifecycle"
	"github.com/opencivic/records-portal/internal/repository"
)

// actorFrom builds the access.Actor for the authenticated caller from the
// context values set by the JWT middleware.
func actorFrom(c echo.Context) access.Actor {
	uid, _ := c.Get("user_id").(uint64)
	role, _ := c.Get("role").(string)
	return access.Actor{ID: uid, Role: role}
}

// opCtx bounds a handler's database work to five seconds.
func opCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// writeErr maps sentinel errors from the core packages onto the HTTP
// taxonomy: 404 NotFound, 403 AccessDenied, 422 ValidationError, 400
// Conflict.  Anything unrecognized is a 500 with no detail leaked.
func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, access.ErrDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	case errors.Is(err, lifecycle.ErrInvalid):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrTransition):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
