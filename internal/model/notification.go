package model

import "time"

// Notification is an in-app message created as a side effect of a request
// lifecycle event.  Rows are never deleted; the only mutation is flipping
// IsRead.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID uint64    `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
