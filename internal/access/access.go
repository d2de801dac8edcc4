// Package access is the single authorization decision point for the
// portal.  Every handler and the lifecycle coordinator consult these
// predicates instead of re-deriving role checks locally, so the visibility
// and mutation rules live in exactly one place.
package access

import (
	"errors"

	"github.com/opencivic/records-portal/internal/model"
)

// ErrDenied is returned by the Require* helpers when the caller is not
// permitted to perform an operation. Handlers translate it into HTTP 403.
var ErrDenied = errors.New("access denied")

// Actor identifies the authenticated caller.  It is built from the JWT
// claims injected by the auth middleware.
type Actor struct {
	ID   uint64
	Role string
}

// Scope describes which requests an actor may list.  Repositories turn it
// into the matching WHERE clause.
type Scope struct {
	// All is true for admins: every request is visible.
	All bool
	// StaffID, when non-zero, selects requests assigned to that staff
	// member plus the unassigned pool.
	StaffID uint64
	// RequesterID, when non-zero, selects only the actor's own requests.
	RequesterID uint64
}

// ListScope returns the visibility predicate for listing requests:
//
//	admin -> all requests
//	staff -> assigned to the actor OR unassigned
//	user  -> requester is the actor
func ListScope(a Actor) Scope {
	switch a.Role {
	case model.RoleAdmin:
		return Scope{All: true}
	case model.RoleStaff:
		return Scope{StaffID: a.ID}
	default:
		return Scope{RequesterID: a.ID}
	}
}

// CanReadRequest reports whether the actor may read a single request.
// Users see only their own; staff see unassigned requests and requests
// assigned to them, never requests held by other staff; admins see all.
func CanReadRequest(a Actor, r model.Request) bool {
	switch a.Role {
	case model.RoleAdmin:
		return true
	case model.RoleStaff:
		return r.AssigneeID == nil || *r.AssigneeID == a.ID
	default:
		return r.RequesterID == a.ID
	}
}

// CanMessage reports whether the actor may post to (or read) a request's
// thread.  The permitted caller set is identical to the read rule.
func CanMessage(a Actor, r model.Request) bool {
	return CanReadRequest(a, r)
}

// CanAssign reports whether the actor may assign a request to staff.
func CanAssign(a Actor) bool {
	return a.Role == model.RoleAdmin
}

// CanUpdateStatus reports whether the actor may change a request's status.
// Users never can; staff only on requests currently assigned to them.
func CanUpdateStatus(a Actor, r model.Request) bool {
	switch a.Role {
	case model.RoleAdmin:
		return true
	case model.RoleStaff:
		return r.AssigneeID != nil && *r.AssigneeID == a.ID
	default:
		return false
	}
}

// IsAdmin gates the admin console, CSV export, analytics and user
// management.
func IsAdmin(a Actor) bool {
	return a.Role == model.RoleAdmin
}

// RequireRead is CanReadRequest expressed as an error for call sites that
// thread sentinel errors upward.
func RequireRead(a Actor, r model.Request) error {
	if !CanReadRequest(a, r) {
		return ErrDenied
	}
	return nil
}

// RequireStatusUpdate is CanUpdateStatus expressed as an error.
func RequireStatusUpdate(a Actor, r model.Request) error {
	if !CanUpdateStatus(a, r) {
		return ErrDenied
	}
	return nil
}
