package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opencivic/records-portal/internal/model"
)

func ptr(v uint64) *uint64 { return &v }

func TestListScope(t *testing.T) {
	assert.Equal(t, Scope{All: true}, ListScope(Actor{ID: 1, Role: model.RoleAdmin}))
	assert.Equal(t, Scope{StaffID: 7}, ListScope(Actor{ID: 7, Role: model.RoleStaff}))
	assert.Equal(t, Scope{RequesterID: 3}, ListScope(Actor{ID: 3, Role: model.RoleUser}))
}

func TestCanReadRequest(t *testing.T) {
	unassigned := model.Request{RequesterID: 3}
	assignedToSeven := model.Request{RequesterID: 3, AssigneeID: ptr(7)}

	tests := []struct {
		name  string
		actor Actor
		req   model.Request
		want  bool
	}{
		{"admin reads anything", Actor{ID: 1, Role: model.RoleAdmin}, assignedToSeven, true},
		{"requester reads own", Actor{ID: 3, Role: model.RoleUser}, assignedToSeven, true},
		{"other user denied", Actor{ID: 4, Role: model.RoleUser}, assignedToSeven, false},
		{"staff reads unassigned", Actor{ID: 7, Role: model.RoleStaff}, unassigned, true},
		{"assignee reads own", Actor{ID: 7, Role: model.RoleStaff}, assignedToSeven, true},
		{"other staff denied", Actor{ID: 8, Role: model.RoleStaff}, assignedToSeven, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadRequest(tt.actor, tt.req))
		})
	}
}

func TestCanMessageMatchesReadRule(t *testing.T) {
	req := model.Request{RequesterID: 3, AssigneeID: ptr(7)}
	for _, a := range []Actor{
		{ID: 1, Role: model.RoleAdmin},
		{ID: 3, Role: model.RoleUser},
		{ID: 4, Role: model.RoleUser},
		{ID: 7, Role: model.RoleStaff},
		{ID: 8, Role: model.RoleStaff},
	} {
		assert.Equal(t, CanReadRequest(a, req), CanMessage(a, req))
	}
}

func TestCanAssign(t *testing.T) {
	assert.True(t, CanAssign(Actor{ID: 1, Role: model.RoleAdmin}))
	assert.False(t, CanAssign(Actor{ID: 7, Role: model.RoleStaff}))
	assert.False(t, CanAssign(Actor{ID: 3, Role: model.RoleUser}))
}

func TestCanUpdateStatus(t *testing.T) {
	req := model.Request{RequesterID: 3, AssigneeID: ptr(7)}

	assert.True(t, CanUpdateStatus(Actor{ID: 1, Role: model.RoleAdmin}, req))
	assert.True(t, CanUpdateStatus(Actor{ID: 7, Role: model.RoleStaff}, req))
	assert.False(t, CanUpdateStatus(Actor{ID: 8, Role: model.RoleStaff}, req))
	// Staff cannot touch unassigned requests either; assignment comes first.
	assert.False(t, CanUpdateStatus(Actor{ID: 7, Role: model.RoleStaff}, model.Request{RequesterID: 3}))
	// The requester never drives the lifecycle, even on their own request.
	assert.False(t, CanUpdateStatus(Actor{ID: 3, Role: model.RoleUser}, req))
}

func TestRequireHelpers(t *testing.T) {
	req := model.Request{RequesterID: 3}

	assert.NoError(t, RequireRead(Actor{ID: 3, Role: model.RoleUser}, req))
	assert.ErrorIs(t, RequireRead(Actor{ID: 4, Role: model.RoleUser}, req), ErrDenied)

	assert.NoError(t, RequireStatusUpdate(Actor{ID: 1, Role: model.RoleAdmin}, req))
	assert.ErrorIs(t, RequireStatusUpdate(Actor{ID: 3, Role: model.RoleUser}, req), ErrDenied)
}
