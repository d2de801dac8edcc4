package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/access"
	"github.com/opencivic/records-portal/internal/lifecycle"
	"github.com/opencivic/records-portal/internal/repository"
)

// MessageHandler serves a request's conversation thread.
type MessageHandler struct {
	Coord    *lifecycle.Coordinator
	Requests *repository.RequestRepo
	Messages *repository.MessageRepo
}

func NewMessageHandler(coord *lifecycle.Coordinator, requests *repository.RequestRepo, messages *repository.MessageRepo) *MessageHandler {
	if coord == nil || requests == nil || messages == nil {
		panic("nil dependency passed to NewMessageHandler")
	}
	return &MessageHandler{Coord: coord, Requests: requests, Messages: messages}
}

type postMessageReq struct {
	RequestID string `json:"request_id"`
	Content   string `json:"content"`
}

// Post appends a message to a request thread.  The permitted caller set is
// the single-request read rule (requester, assigned staff, admin).
func (h *MessageHandler) Post(c echo.Context) error {
	var body postMessageReq
	if err := c.Bind(&body); err != nil || body.RequestID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "request_id required"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()

	msg, err := h.Coord.PostMessage(ctx, actorFrom(c), body.RequestID, body.Content)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// List returns a request's thread ordered by created_at ascending, after
// re-checking the read rule against the parent request.
func (h *MessageHandler) List(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	req, err := h.Requests.GetByID(ctx, c.Param("request_id"))
	if err != nil {
		return writeErr(c, err)
	}
	if !access.CanMessage(actorFrom(c), req) {
		return writeErr(c, access.ErrDenied)
	}
	msgs, err := h.Messages.ListByRequest(ctx, req.ID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}
