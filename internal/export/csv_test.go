package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/repository"
)

func TestRequestsCSV(t *testing.T) {
	created := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	assignee := "Sam Staff"
	rows := []repository.MasterRow{
		{
			Request: model.Request{
				ID:        "req-1",
				Title:     "Incident report, Main St",
				Type:      model.TypeIncidentReport,
				Status:    model.StatusAssigned,
				Priority:  model.PriorityHigh,
				CreatedAt: created,
				UpdatedAt: created,
			},
			RequesterName: "Jo Citizen",
			AssigneeName:  &assignee,
		},
		{
			Request: model.Request{
				ID:        "req-2",
				Title:     "Body cam footage",
				Type:      model.TypeBodyCamFootage,
				Status:    model.StatusPending,
				Priority:  model.PriorityMedium,
				CreatedAt: created,
				UpdatedAt: created,
			},
			RequesterName: "Ana Pérez",
		},
	}

	data, err := RequestsCSV(rows)
	assert.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])

	assert.Equal(t, "req-1", records[1][0])
	assert.Equal(t, "Incident report, Main St", records[1][1])
	assert.Equal(t, "Sam Staff", records[1][6])
	assert.Equal(t, created.Format(time.RFC3339), records[1][10])

	// Unassigned rows export an empty assignee column.
	assert.Equal(t, "", records[2][6])
}

func TestRequestsCSVEmpty(t *testing.T) {
	data, err := RequestsCSV(nil)
	assert.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFilename(t *testing.T) {
	name := Filename("requests", "csv")
	assert.True(t, strings.HasPrefix(name, "requests-"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.Len(t, name, len("requests-")+8+len(".csv"))
}
