package model

import "time"

// Request lifecycle states.  Transitions are validated by the lifecycle
// package: pending leaves only through assignment, assigned moves to
// in_progress, in_progress to completed, and denied is reachable from any
// non-terminal state.
const (
	StatusPending    = "pending"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusDenied     = "denied"
)

// Record categories citizens can request.
const (
	TypeIncidentReport = "incident_report"
	TypePoliceReport   = "police_report"
	TypeBodyCamFootage = "body_cam_footage"
	TypeCaseFile       = "case_file"
	TypeOther          = "other"
)

// Priorities accepted on submission.  Stored as free text; these are the
// values the intake form offers.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidStatus reports whether s names a known lifecycle state.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusDenied:
		return true
	}
	return false
}

// ValidType reports whether s names a known record category.
func ValidType(s string) bool {
	switch s {
	case TypeIncidentReport, TypePoliceReport, TypeBodyCamFootage, TypeCaseFile, TypeOther:
		return true
	}
	return false
}

// TerminalStatus reports whether a request in state s can no longer move.
func TerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusDenied
}

// Request mirrors the 'requests' table.  RequesterID is immutable after
// creation.  AssigneeID is nil while the request sits in the unassigned
// pool.  The incident_* columns hold optional free-form metadata captured
// by the intake form.
type Request struct {
	ID                string    `json:"id"`
	RequesterID       uint64    `json:"requester_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Type              string    `json:"type"`
	Status            string    `json:"status"`
	AssigneeID        *uint64   `json:"assignee_id"`
	Priority          string    `json:"priority"`
	IncidentDate      string    `json:"incident_date,omitempty"`
	IncidentLocation  string    `json:"incident_location,omitempty"`
	CaseNumber        string    `json:"case_number,omitempty"`
	OfficerNames      string    `json:"officer_names,omitempty"`
	VehicleInfo       string    `json:"vehicle_info,omitempty"`
	AdditionalDetails string    `json:"additional_details,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
