package export

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/opencivic/records-portal/internal/repository"
)

// csvHeader lists the flattened request columns in export order.
var csvHeader = []string{
	"id", "title", "type", "status", "priority",
	"requester_name", "assignee_name",
	"incident_date", "incident_location", "case_number",
	"created_at", "updated_at",
}

// RequestsCSV flattens the admin master list into CSV bytes.
func RequestsCSV(rows []repository.MasterRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		assignee := ""
		if r.AssigneeName != nil {
			assignee = *r.AssigneeName
		}
		rec := []string{
			r.ID, r.Title, r.Type, r.Status, r.Priority,
			r.RequesterName, assignee,
			r.IncidentDate, r.IncidentLocation, r.CaseNumber,
			r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds a timestamped download name, e.g. requests-20260827.csv.
func Filename(prefix, ext string) string {
	return prefix + "-" + time.Now().UTC().Format("20060102") + "." + ext
}
