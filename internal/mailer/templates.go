package mailer

import (
	"bytes"
	"text/template"

	"github.com/opencivic/records-portal/internal/model"
)

// TemplateData is the flat field set exposed to email templates.  Keeping
// it flat lets admins write plain {{.Title}} style placeholders.
type TemplateData struct {
	RecipientName string
	Title         string
	RequesterName string
	OldStatus     string
	NewStatus     string
	RequestID     string
}

// defaults are the built-in subject/body pairs used until an admin edits a
// template through the console.
var defaults = map[string]model.EmailTemplate{
	model.TemplateNewRequest: {
		Kind:    model.TemplateNewRequest,
		Subject: "New Records Request: {{.Title}}",
		Body: `<p>Hello {{.RecipientName}},</p>
<p>A new records request <strong>{{.Title}}</strong> was submitted by {{.RequesterName}}.</p>
<p>Please log in to the portal to triage it.</p>`,
	},
	model.TemplateAssignment: {
		Kind:    model.TemplateAssignment,
		Subject: "Request Assigned to You: {{.Title}}",
		Body: `<p>Hello {{.RecipientName}},</p>
<p>You have been assigned the records request <strong>{{.Title}}</strong>.</p>`,
	},
	model.TemplateStatusUpdate: {
		Kind:    model.TemplateStatusUpdate,
		Subject: "Status Update: {{.Title}}",
		Body: `<p>Hello {{.RecipientName}},</p>
<p>Your request <strong>{{.Title}}</strong> moved from
<strong>{{.OldStatus}}</strong> to <strong>{{.NewStatus}}</strong>.</p>`,
	},
	model.TemplateCancellation: {
		Kind:    model.TemplateCancellation,
		Subject: "Request Cancelled: {{.Title}}",
		Body: `<p>Hello {{.RecipientName}},</p>
<p>Your request <strong>{{.Title}}</strong> has been cancelled. Contact the
records department if you believe this is an error.</p>`,
	},
}

// DefaultTemplate returns the built-in template for a kind.  The bool is
// false for unknown kinds.
func DefaultTemplate(kind string) (model.EmailTemplate, bool) {
	t, ok := defaults[kind]
	return t, ok
}

// Render executes a template's subject and body against data.
func Render(t model.EmailTemplate, data TemplateData) (subject, body string, err error) {
	subject, err = renderOne("subject", t.Subject, data)
	if err != nil {
		return "", "", err
	}
	body, err = renderOne("body", t.Body, data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func renderOne(name, text string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
