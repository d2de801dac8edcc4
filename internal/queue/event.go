// Package queue defines message payloads exchanged over the message broker
// and the background consumer that audits them.
package queue

// NotificationDispatchedEvent is published once per delivered notification.
// It carries enough context for downstream consumers to audit or alert
// without querying the primary database.
type NotificationDispatchedEvent struct {
	NotificationID string `json:"notification_id"`
	RecipientID    uint64 `json:"recipient_id"`
	RecipientEmail string `json:"recipient_email"`
	Kind           string `json:"kind"`
	RequestID      string `json:"request_id"`
	RequestTitle   string `json:"request_title"`
	EmailSent      bool   `json:"email_sent"`
	DispatchedAt   string `json:"dispatched_at"`
}
