package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/repository"
)

// NotificationHandler serves the caller's own notification feed.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	if n == nil {
		panic("nil repository passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: n}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	a := actorFrom(c)
	out, err := h.Notifications.ListByRecipient(ctx, a.ID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// MarkRead flips a notification to read.  Owner only; the repository
// enforces ownership so other users' ids answer 404, not 403.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	a := actorFrom(c)
	if err := h.Notifications.MarkRead(ctx, c.Param("id"), a.ID); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "notification marked as read"})
}
