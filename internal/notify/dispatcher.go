// Package notify implements the notification dispatcher: one in-app
// notification row, one best-effort email and one broker event per
// lifecycle fan-out target.  Nothing in this package ever propagates an
// error back to the mutation that triggered it.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/records-portal/internal/lifecycle"
	"github.com/opencivic/records-portal/internal/mailer"
	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/queue"
)

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// TemplateStore resolves the admin-edited email template for a kind.  A
// not-found error falls back to the built-in default.
type TemplateStore interface {
	GetByKind(ctx context.Context, kind string) (model.EmailTemplate, error)
}

// Sender is the outbound mail capability, satisfied by mailer.Mailer.
type Sender interface {
	Enabled() bool
	Send(to, subject, html string) error
}

// Dispatcher satisfies lifecycle.Dispatcher.
type Dispatcher struct {
	Store     NotificationStore
	Templates TemplateStore
	Mail      Sender
	AMQPURL   string
}

func NewDispatcher(store NotificationStore, templates TemplateStore, mail Sender, amqpURL string) *Dispatcher {
	return &Dispatcher{Store: store, Templates: templates, Mail: mail, AMQPURL: amqpURL}
}

// Notify records the in-app notification synchronously (so it is visible
// no later than the HTTP response that caused it), then attempts email and
// broker delivery.  Every failure is logged and swallowed.
func (d *Dispatcher) Notify(ctx context.Context, recipient model.User, kind string, ev lifecycle.Event) {
	title, body := inAppText(kind, ev)
	n := model.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipient.ID,
		Title:       title,
		Body:        body,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err := d.Store.Create(ctx, &n); err != nil {
		log.Printf("notify: store notification for user %d failed: %v", recipient.ID, err)
		return
	}

	emailSent := d.sendEmail(ctx, recipient, kind, ev)

	event := queue.NotificationDispatchedEvent{
		NotificationID: n.ID,
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
		Kind:           kind,
		RequestID:      ev.RequestID,
		RequestTitle:   ev.RequestTitle,
		EmailSent:      emailSent,
		DispatchedAt:   n.CreatedAt.Format(time.RFC3339),
	}
	_ = queue.PublishNotificationDispatched(ctx, d.AMQPURL, event)
}

func (d *Dispatcher) sendEmail(ctx context.Context, recipient model.User, kind string, ev lifecycle.Event) bool {
	if !d.Mail.Enabled() {
		return false
	}
	tmpl, err := d.Templates.GetByKind(ctx, kind)
	if err != nil {
		def, ok := mailer.DefaultTemplate(kind)
		if !ok {
			log.Printf("notify: no template for kind %q", kind)
			return false
		}
		tmpl = def
	}
	subject, html, err := mailer.Render(tmpl, mailer.TemplateData{
		RecipientName: recipient.FullName,
		Title:         ev.RequestTitle,
		RequesterName: ev.RequesterName,
		OldStatus:     ev.OldStatus,
		NewStatus:     ev.NewStatus,
		RequestID:     ev.RequestID,
	})
	if err != nil {
		log.Printf("notify: render %s template failed: %v", kind, err)
		return false
	}
	if err := d.Mail.Send(recipient.Email, subject, html); err != nil {
		log.Printf("notify: %v", err)
		return false
	}
	return true
}

// inAppText builds the short title/body pair stored in the notifications
// table.
func inAppText(kind string, ev lifecycle.Event) (title, body string) {
	switch kind {
	case model.TemplateNewRequest:
		return "New Request Submitted",
			fmt.Sprintf("New request '%s' submitted by %s", ev.RequestTitle, ev.RequesterName)
	case model.TemplateAssignment:
		return "Request Assigned",
			fmt.Sprintf("You have been assigned the request '%s'", ev.RequestTitle)
	case model.TemplateStatusUpdate:
		return "Request Status Updated",
			fmt.Sprintf("Your request '%s' moved from %s to %s", ev.RequestTitle, ev.OldStatus, ev.NewStatus)
	case model.TemplateCancellation:
		return "Request Cancelled",
			fmt.Sprintf("Your request '%s' has been cancelled", ev.RequestTitle)
	default:
		return "Notification", ev.RequestTitle
	}
}
