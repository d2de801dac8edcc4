package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,email,full_name,password_hash,role,is_active,created_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts a user and returns its ID.  The email is normalized to
// lower case so lookups are case-insensitive.
func (r *UserRepo) Create(ctx context.Context, email, fullName, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, full_name, password_hash, role) VALUES (?,?,?,?)",
		email, fullName, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// ListByRole returns all active users with the given role, used for the
// admin fan-out on request creation and the staff-members view.
func (r *UserRepo) ListByRole(ctx context.Context, roles ...string) ([]model.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	q := "SELECT " + userCols + " FROM users WHERE is_active=1 AND role IN (?" +
		strings.Repeat(",?", len(roles)-1) + ") ORDER BY full_name"
	args := make([]interface{}, len(roles))
	for i, role := range roles {
		args[i] = role
	}
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// ListAll returns every user, active or not, newest first.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// UpdateRole sets a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	return r.expectOneRow(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
}

// UpdateEmail sets a user's email, normalized, preserving uniqueness.
func (r *UserRepo) UpdateEmail(ctx context.Context, id uint64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.expectOneRow(ctx, "UPDATE users SET email=? WHERE id=?", email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// Deactivate soft-deletes a user.  Accounts referenced by requests are
// never hard-deleted.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
	return r.expectOneRow(ctx, "UPDATE users SET is_active=0 WHERE id=?", id)
}

// CountByRole counts users holding the given role.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=?", role).Scan(&n)
	return n, err
}

func (r *UserRepo) expectOneRow(ctx context.Context, q string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update;
		// disambiguate with an existence probe.
		var one int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE id=? LIMIT 1", args[len(args)-1]).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}
	return nil
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
