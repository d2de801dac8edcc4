package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/access"
	"github.com/opencivic/records-portal/internal/lifecycle"
	"github.com/opencivic/records-portal/internal/repository"
)

// RequestHandler serves the citizen/staff-facing request endpoints.  All
// authorization goes through the access package; the lifecycle coordinator
// owns every mutation.
type RequestHandler struct {
	Coord    *lifecycle.Coordinator
	Requests *repository.RequestRepo
}

func NewRequestHandler(coord *lifecycle.Coordinator, requests *repository.RequestRepo) *RequestHandler {
	if coord == nil || requests == nil {
		panic("nil dependency passed to NewRequestHandler")
	}
	return &RequestHandler{Coord: coord, Requests: requests}
}

type assignReq struct {
	StaffID uint64 `json:"staff_id"`
}
type statusReq struct {
	Status string `json:"status"`
}

// Create submits a new records request on behalf of the caller.
func (h *RequestHandler) Create(c echo.Context) error {
	var in lifecycle.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()

	req, err := h.Coord.Create(ctx, actorFrom(c), in)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

// List returns the requests visible to the caller per the visibility
// table: admins all, staff their own plus the unassigned pool, citizens
// their own.
func (h *RequestHandler) List(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	requests, err := h.Requests.List(ctx, access.ListScope(actorFrom(c)))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

// Get returns a single request, applying the single-request read rule.
func (h *RequestHandler) Get(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	req, err := h.Requests.GetByID(ctx, c.Param("id"))
	if err != nil {
		return writeErr(c, err)
	}
	if err := access.RequireRead(actorFrom(c), req); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// Assign hands a request to a staff member.  Admin only.
func (h *RequestHandler) Assign(c echo.Context) error {
	var body assignReq
	if err := c.Bind(&body); err != nil || body.StaffID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff_id required"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()

	req, err := h.Coord.Assign(ctx, actorFrom(c), c.Param("id"), body.StaffID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// UpdateStatus moves a request along the lifecycle graph.
func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	var body statusReq
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	ctx, cancel := opCtx(c)
	defer cancel()

	req, err := h.Coord.UpdateStatus(ctx, actorFrom(c), c.Param("id"), body.Status)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, req)
}
