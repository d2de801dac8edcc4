package model

import "time"

// Message is one entry in a request's conversation thread.  Rows are
// append-only and ordered by CreatedAt ascending.  SenderName and
// SenderRole are snapshots taken at send time so the thread stays readable
// even after the sender's account changes.
type Message struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	SenderID   uint64    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole string    `json:"sender_role"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
