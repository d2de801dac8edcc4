package model

import "time"

// Template kinds, one per lifecycle event that sends mail.  The kind
// doubles as the lookup key for the admin-editable template row.
const (
	TemplateNewRequest   = "new_request"
	TemplateAssignment   = "assignment"
	TemplateStatusUpdate = "status_update"
	TemplateCancellation = "cancellation"
)

// ValidTemplateKind reports whether s names a known template kind.
func ValidTemplateKind(s string) bool {
	switch s {
	case TemplateNewRequest, TemplateAssignment, TemplateStatusUpdate, TemplateCancellation:
		return true
	}
	return false
}

// EmailTemplate holds the admin-editable subject and body for one kind of
// outbound notification mail.  Subject and Body are Go text/template
// strings rendered against a flat field set (Title, RequesterName,
// OldStatus, NewStatus, ...).
type EmailTemplate struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}
