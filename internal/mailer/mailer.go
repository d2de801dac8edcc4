// Package mailer sends HTML notification mail over SMTP.  Delivery is
// best-effort: callers log and drop errors, they never fail a request
// because the mail server is down.
package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/opencivic/records-portal/internal/config"
)

// Mailer holds SMTP connection settings.  Enabled() is false when no host
// is configured, which turns Send into a no-op.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func New(cfg config.Config) *Mailer {
	return &Mailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.FromEmail,
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// From exposes the configured sender address for the admin email-config
// view.
func (m *Mailer) From() string { return m.from }

// Host exposes the configured server for the admin email-config view.
func (m *Mailer) Host() string { return m.host + ":" + m.port }

// Send delivers one HTML message.  Returns nil immediately when mail is
// disabled.
func (m *Mailer) Send(to, subject, html string) error {
	if !m.Enabled() {
		return nil
	}
	msg := "From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		html

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
