package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/repository"
)

// DashboardHandler serves the role-scoped stat cards and the admin
// analytics view.
type DashboardHandler struct {
	Requests *repository.RequestRepo
	Users    *repository.UserRepo
}

func NewDashboardHandler(requests *repository.RequestRepo, users *repository.UserRepo) *DashboardHandler {
	if requests == nil || users == nil {
		panic("nil dependency passed to NewDashboardHandler")
	}
	return &DashboardHandler{Requests: requests, Users: users}
}

// Stats returns the caller's dashboard counters.  The shape depends on
// role: admins see the system-wide picture, staff their own queue,
// citizens their own requests.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	a := actorFrom(c)
	switch a.Role {
	case model.RoleAdmin:
		total, err := h.Requests.CountWhere(ctx, "")
		if err != nil {
			return writeErr(c, err)
		}
		pending, err := h.Requests.CountWhere(ctx, "status=?", model.StatusPending)
		if err != nil {
			return writeErr(c, err)
		}
		completed, err := h.Requests.CountWhere(ctx, "status=?", model.StatusCompleted)
		if err != nil {
			return writeErr(c, err)
		}
		users, err := h.Users.CountByRole(ctx, model.RoleUser)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"total_requests":     total,
			"pending_requests":   pending,
			"completed_requests": completed,
			"total_users":        users,
		})

	case model.RoleStaff:
		assigned, err := h.Requests.CountWhere(ctx,
			"assignee_id=? AND status IN (?,?)", a.ID, model.StatusAssigned, model.StatusInProgress)
		if err != nil {
			return writeErr(c, err)
		}
		completed, err := h.Requests.CountWhere(ctx,
			"assignee_id=? AND status=?", a.ID, model.StatusCompleted)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"assigned_requests":  assigned,
			"completed_requests": completed,
		})

	default:
		total, err := h.Requests.CountWhere(ctx, "requester_id=?", a.ID)
		if err != nil {
			return writeErr(c, err)
		}
		// "Pending" on the citizen dashboard means anything still open.
		open, err := h.Requests.CountWhere(ctx,
			"requester_id=? AND status IN (?,?,?)",
			a.ID, model.StatusPending, model.StatusAssigned, model.StatusInProgress)
		if err != nil {
			return writeErr(c, err)
		}
		completed, err := h.Requests.CountWhere(ctx,
			"requester_id=? AND status=?", a.ID, model.StatusCompleted)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"total_requests":     total,
			"pending_requests":   open,
			"completed_requests": completed,
		})
	}
}

// Analytics returns the admin reporting payload: distribution of requests
// by status, type and priority, mean resolution time in hours, per-staff
// workload and the trailing twelve-month volume trend.
func (h *DashboardHandler) Analytics(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	total, err := h.Requests.CountWhere(ctx, "")
	if err != nil {
		return writeErr(c, err)
	}
	byStatus, err := h.Requests.GroupCounts(ctx, "status")
	if err != nil {
		return writeErr(c, err)
	}
	byType, err := h.Requests.GroupCounts(ctx, "type")
	if err != nil {
		return writeErr(c, err)
	}
	byPriority, err := h.Requests.GroupCounts(ctx, "priority")
	if err != nil {
		return writeErr(c, err)
	}
	avgHours, err := h.Requests.AvgResolutionHours(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	workload, err := h.Requests.StaffWorkloads(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	trends, err := h.Requests.MonthlyTrends(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_requests":          total,
		"requests_by_status":      byStatus,
		"requests_by_type":        byType,
		"requests_by_priority":    byPriority,
		"average_resolution_time": avgHours,
		"staff_workload":          workload,
		"monthly_trends":          trends,
	})
}
