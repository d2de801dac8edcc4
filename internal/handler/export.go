package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/access"
	"github.com/opencivic/records-portal/internal/export"
	"github.com/opencivic/records-portal/internal/repository"
)

// ExportHandler serves downloads: a single request as PDF for anyone who
// can read it, the full request table as CSV for admins.
type ExportHandler struct {
	Requests *repository.RequestRepo
	Users    *repository.UserRepo
	Messages *repository.MessageRepo
}

func NewExportHandler(requests *repository.RequestRepo, users *repository.UserRepo, messages *repository.MessageRepo) *ExportHandler {
	if requests == nil || users == nil || messages == nil {
		panic("nil dependency passed to NewExportHandler")
	}
	return &ExportHandler{Requests: requests, Users: users, Messages: messages}
}

// RequestPDF streams one request and its thread as a PDF attachment.  The
// caller set is the single-request read rule.
func (h *ExportHandler) RequestPDF(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	req, err := h.Requests.GetByID(ctx, c.Param("id"))
	if err != nil {
		return writeErr(c, err)
	}
	if err := access.RequireRead(actorFrom(c), req); err != nil {
		return writeErr(c, err)
	}
	requester, err := h.Users.GetByID(ctx, req.RequesterID)
	if err != nil {
		return writeErr(c, err)
	}
	messages, err := h.Messages.ListByRequest(ctx, req.ID)
	if err != nil {
		return writeErr(c, err)
	}

	pdf, err := export.RequestPDF(req, requester, messages)
	if err != nil {
		return writeErr(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+export.Filename("request-"+req.ID, "pdf")+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// RequestsCSV streams the admin master list as a CSV attachment.
func (h *ExportHandler) RequestsCSV(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	rows, err := h.Requests.MasterList(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	data, err := export.RequestsCSV(rows)
	if err != nil {
		return writeErr(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+export.Filename("requests", "csv")+`"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
