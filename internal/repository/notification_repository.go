package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/opencivic/records-portal/internal/model"
)

// NotificationRepo stores in-app notifications.  Rows are only ever
// inserted and flipped to read.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts a notification row.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO notifications (id,recipient_id,title,body,is_read,created_at)
		 VALUES (?,?,?,?,?,?)`,
		n.ID, n.RecipientID, n.Title, n.Body, n.IsRead, n.CreatedAt)
	return err
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID uint64) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,recipient_id,title,body,is_read,created_at
		 FROM notifications WHERE recipient_id=? ORDER BY created_at DESC, id DESC`, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips is_read for a notification owned by recipientID.  The
// write is idempotent; marking an already-read notification succeeds.
// ErrNotFound is returned when the row does not exist or belongs to
// someone else, so ownership leaks nothing beyond 404.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string, recipientID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND recipient_id=?", id, recipientID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE id=? AND recipient_id=? LIMIT 1",
			id, recipientID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// CountForRecipient is used by tests and the dashboard badge.
func (r *NotificationRepo) CountForRecipient(ctx context.Context, recipientID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id=?", recipientID).Scan(&n)
	return n, err
}
