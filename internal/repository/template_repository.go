package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/records-portal/internal/model"
)

// TemplateRepo stores the admin-editable email templates, one row per
// kind.  Upsert keeps the kind unique so editing never duplicates.
type TemplateRepo struct{ DB *sql.DB }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{DB: db} }

// GetByKind fetches the template for one notification kind.
func (r *TemplateRepo) GetByKind(ctx context.Context, kind string) (model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,kind,subject,body,updated_at FROM email_templates WHERE kind=? LIMIT 1",
		kind).Scan(&t.ID, &t.Kind, &t.Subject, &t.Body, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// ListAll returns every stored template.
func (r *TemplateRepo) ListAll(ctx context.Context) ([]model.EmailTemplate, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,kind,subject,body,updated_at FROM email_templates ORDER BY kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.EmailTemplate{}
	for rows.Next() {
		var t model.EmailTemplate
		if err := rows.Scan(&t.ID, &t.Kind, &t.Subject, &t.Body, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Upsert writes the subject/body for a kind, inserting the row on first
// edit.
func (r *TemplateRepo) Upsert(ctx context.Context, kind, subject, body string) (model.EmailTemplate, error) {
	now := time.Now().UTC().Truncate(time.Second)
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO email_templates (id,kind,subject,body,updated_at) VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE subject=VALUES(subject), body=VALUES(body), updated_at=VALUES(updated_at)`,
		uuid.NewString(), kind, subject, body, now)
	if err != nil {
		return model.EmailTemplate{}, err
	}
	return r.GetByKind(ctx, kind)
}
