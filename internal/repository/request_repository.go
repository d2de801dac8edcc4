package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/opencivic/records-portal/internal/access"
	"github.com/opencivic/records-portal/internal/model"
)

// RequestRepo provides persistence for record requests.  All timestamps
// are stored in UTC DATETIME columns.
type RequestRepo struct{ DB *sql.DB }

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{DB: db} }

const requestCols = `id,requester_id,title,description,type,status,assignee_id,priority,
	incident_date,incident_location,case_number,officer_names,vehicle_info,additional_details,
	created_at,updated_at`

func scanRequest(scan func(dest ...interface{}) error) (model.Request, error) {
	var (
		req      model.Request
		assignee sql.NullInt64
		details  sql.NullString
	)
	err := scan(&req.ID, &req.RequesterID, &req.Title, &req.Description, &req.Type, &req.Status,
		&assignee, &req.Priority, &req.IncidentDate, &req.IncidentLocation, &req.CaseNumber,
		&req.OfficerNames, &req.VehicleInfo, &details, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return req, err
	}
	if assignee.Valid {
		id := uint64(assignee.Int64)
		req.AssigneeID = &id
	}
	req.AdditionalDetails = details.String
	return req, nil
}

// Create inserts a new request row.  The caller supplies a fully populated
// model (id, timestamps, status) so the coordinator owns those decisions.
func (r *RequestRepo) Create(ctx context.Context, req *model.Request) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO requests (id,requester_id,title,description,type,status,assignee_id,priority,
			incident_date,incident_location,case_number,officer_names,vehicle_info,additional_details,
			created_at,updated_at)
		 VALUES (?,?,?,?,?,?,NULL,?,?,?,?,?,?,?,?,?)`,
		req.ID, req.RequesterID, req.Title, req.Description, req.Type, req.Status, req.Priority,
		req.IncidentDate, req.IncidentLocation, req.CaseNumber, req.OfficerNames, req.VehicleInfo,
		req.AdditionalDetails, req.CreatedAt, req.UpdatedAt)
	return err
}

// GetByID fetches a single request.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (model.Request, error) {
	req, err := scanRequest(r.DB.QueryRowContext(ctx,
		"SELECT "+requestCols+" FROM requests WHERE id=? LIMIT 1", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return req, ErrNotFound
	}
	return req, err
}

// List returns the requests visible under the given access scope, newest
// first.  The scope is produced by access.ListScope so the WHERE clause
// matches the visibility table exactly.
func (r *RequestRepo) List(ctx context.Context, scope access.Scope) ([]model.Request, error) {
	q := "SELECT " + requestCols + " FROM requests"
	var args []interface{}
	switch {
	case scope.All:
		// no filter
	case scope.StaffID != 0:
		q += " WHERE assignee_id=? OR assignee_id IS NULL"
		args = append(args, scope.StaffID)
	default:
		q += " WHERE requester_id=?"
		args = append(args, scope.RequesterID)
	}
	q += " ORDER BY created_at DESC, id DESC"
	return r.queryRequests(ctx, q, args...)
}

// ListUnassigned returns the unassigned pool for the admin console.
func (r *RequestRepo) ListUnassigned(ctx context.Context) ([]model.Request, error) {
	return r.queryRequests(ctx,
		"SELECT "+requestCols+" FROM requests WHERE assignee_id IS NULL ORDER BY created_at DESC")
}

// Assign points the request at a staff member and moves it to assigned.
// Re-assignment overwrites the previous assignee; the write is a single
// atomic UPDATE so concurrent assigns resolve last-write-wins.
func (r *RequestRepo) Assign(ctx context.Context, id string, staffID uint64, now time.Time) error {
	return r.expectRow(ctx,
		"UPDATE requests SET assignee_id=?, status=?, updated_at=? WHERE id=?",
		staffID, model.StatusAssigned, now, id)
}

// UpdateStatus sets the status and bumps updated_at.
func (r *RequestRepo) UpdateStatus(ctx context.Context, id, status string, now time.Time) error {
	return r.expectRow(ctx,
		"UPDATE requests SET status=?, updated_at=? WHERE id=?", status, now, id)
}

// Delete removes a request and its message thread.  Notifications are kept;
// they reference users, not requests.
func (r *RequestRepo) Delete(ctx context.Context, id string) error {
	if err := r.expectRow(ctx, "DELETE FROM requests WHERE id=?", id); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx, "DELETE FROM messages WHERE request_id=?", id)
	return err
}

// CountWhere counts requests matching an optional filter fragment, e.g.
// "status=?" or "assignee_id=? AND status=?".
func (r *RequestRepo) CountWhere(ctx context.Context, where string, args ...interface{}) (int, error) {
	q := "SELECT COUNT(*) FROM requests"
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	err := r.DB.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// GroupCounts returns request counts grouped by the given column (status,
// type or priority).  col is restricted to known column names at the call
// site; it is never user input.
func (r *RequestRepo) GroupCounts(ctx context.Context, col string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+col+", COUNT(*) FROM requests GROUP BY "+col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}

// AvgResolutionHours reports the mean created->updated gap of completed
// requests, in hours.  Returns 0 when nothing has completed yet.
func (r *RequestRepo) AvgResolutionHours(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT AVG(TIMESTAMPDIFF(SECOND, created_at, updated_at))/3600 FROM requests WHERE status=?",
		model.StatusCompleted).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// MonthlyTrend is one bucket of the request-volume trend chart.
type MonthlyTrend struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// MonthlyTrends returns per-month request counts for the trailing twelve
// months, oldest first.
func (r *RequestRepo) MonthlyTrends(ctx context.Context) ([]MonthlyTrend, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DATE_FORMAT(created_at, '%Y-%m') AS m, COUNT(*)
		 FROM requests
		 WHERE created_at >= DATE_SUB(NOW(), INTERVAL 12 MONTH)
		 GROUP BY m ORDER BY m`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MonthlyTrend{}
	for rows.Next() {
		var t MonthlyTrend
		if err := rows.Scan(&t.Month, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// StaffWorkload aggregates assigned/completed counts per staff member.
type StaffWorkload struct {
	Name      string `json:"name"`
	Assigned  int    `json:"assigned"`
	Completed int    `json:"completed"`
}

// StaffWorkloads joins staff users against their assignment counts for the
// analytics view.
func (r *RequestRepo) StaffWorkloads(ctx context.Context) ([]StaffWorkload, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.full_name,
			COUNT(q.id),
			COALESCE(SUM(q.status='completed'),0)
		 FROM users u
		 LEFT JOIN requests q ON q.assignee_id=u.id
		 WHERE u.role IN ('staff','admin') AND u.is_active=1
		 GROUP BY u.id, u.full_name
		 ORDER BY u.full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []StaffWorkload{}
	for rows.Next() {
		var w StaffWorkload
		if err := rows.Scan(&w.Name, &w.Assigned, &w.Completed); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// MasterRow is a request joined with requester and assignee names for the
// admin master list.
type MasterRow struct {
	model.Request
	RequesterName string  `json:"requester_name"`
	AssigneeName  *string `json:"assignee_name"`
}

// MasterList returns every request with requester/assignee display names.
func (r *RequestRepo) MasterList(ctx context.Context) ([]MasterRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT q.id,q.requester_id,q.title,q.description,q.type,q.status,q.assignee_id,q.priority,
			q.incident_date,q.incident_location,q.case_number,q.officer_names,q.vehicle_info,
			q.additional_details,q.created_at,q.updated_at,
			ru.full_name, au.full_name
		 FROM requests q
		 JOIN users ru ON ru.id=q.requester_id
		 LEFT JOIN users au ON au.id=q.assignee_id
		 ORDER BY q.created_at DESC, q.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []MasterRow{}
	for rows.Next() {
		var (
			row      MasterRow
			assignee sql.NullInt64
			details  sql.NullString
			aName    sql.NullString
		)
		err := rows.Scan(&row.ID, &row.RequesterID, &row.Title, &row.Description, &row.Type,
			&row.Status, &assignee, &row.Priority, &row.IncidentDate, &row.IncidentLocation,
			&row.CaseNumber, &row.OfficerNames, &row.VehicleInfo, &details,
			&row.CreatedAt, &row.UpdatedAt, &row.RequesterName, &aName)
		if err != nil {
			return nil, err
		}
		if assignee.Valid {
			id := uint64(assignee.Int64)
			row.AssigneeID = &id
		}
		row.AdditionalDetails = details.String
		if aName.Valid {
			n := aName.String
			row.AssigneeName = &n
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *RequestRepo) queryRequests(ctx context.Context, q string, args ...interface{}) ([]model.Request, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Request{}
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *RequestRepo) expectRow(ctx context.Context, q string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		id := args[len(args)-1]
		err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM requests WHERE id=? LIMIT 1", id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
