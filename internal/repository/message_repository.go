package repository

import (
	"context"
	"database/sql"

	"github.com/opencivic/records-portal/internal/model"
)

// MessageRepo stores the append-only conversation thread under each
// request.  Messages are never updated or deleted individually.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

// Append inserts a message row.
func (r *MessageRepo) Append(ctx context.Context, m *model.Message) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO messages (id,request_id,sender_id,sender_name,sender_role,content,created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.RequestID, m.SenderID, m.SenderName, m.SenderRole, m.Content, m.CreatedAt)
	return err
}

// ListByRequest returns the thread ordered by created_at ascending.
func (r *MessageRepo) ListByRequest(ctx context.Context, requestID string) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,request_id,sender_id,sender_name,sender_role,content,created_at
		 FROM messages WHERE request_id=? ORDER BY created_at ASC, id ASC`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.RequestID, &m.SenderID, &m.SenderName, &m.SenderRole,
			&m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
