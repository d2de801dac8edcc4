// Package export renders requests for download: a single request plus its
// thread as PDF, or the whole request table as CSV.  Both are pure
// transformations over already-authorized data; access checks happen in
// the handlers.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/opencivic/records-portal/internal/model"
)

// RequestPDF renders one request and its message thread as a PDF document.
func RequestPDF(req model.Request, requester model.User, messages []model.Message) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Records Request "+req.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, "Public Records Request", "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 UTC"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	field := func(label, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 6, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, value, "", "L", false)
	}

	field("Request ID", req.ID)
	field("Title", req.Title)
	field("Requester", fmt.Sprintf("%s <%s>", requester.FullName, requester.Email))
	field("Type", req.Type)
	field("Status", req.Status)
	field("Priority", req.Priority)
	field("Submitted", req.CreatedAt.Format(time.RFC3339))
	field("Last Updated", req.UpdatedAt.Format(time.RFC3339))
	field("Incident Date", req.IncidentDate)
	field("Incident Location", req.IncidentLocation)
	field("Case Number", req.CaseNumber)
	field("Officers Involved", req.OfficerNames)
	field("Vehicle Info", req.VehicleInfo)

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 7, "Description", "", "L", false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, req.Description, "", "L", false)
	if req.AdditionalDetails != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, "Additional Details", "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, req.AdditionalDetails, "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, 7, fmt.Sprintf("Messages (%d)", len(messages)), "", "L", false)
	for _, m := range messages {
		pdf.SetFont("Helvetica", "B", 9)
		header := fmt.Sprintf("%s (%s) at %s", m.SenderName, m.SenderRole, m.CreatedAt.Format("2006-01-02 15:04"))
		pdf.MultiCell(0, 5, header, "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, m.Content, "", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
