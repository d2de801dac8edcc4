package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opencivic/records-portal/internal/access"
	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/repository"
)

// ----- in-memory fakes -----

type fakeRequests struct {
	byID map[string]model.Request
}

func newFakeRequests(reqs ...model.Request) *fakeRequests {
	f := &fakeRequests{byID: map[string]model.Request{}}
	for _, r := range reqs {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeRequests) Create(_ context.Context, req *model.Request) error {
	f.byID[req.ID] = *req
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id string) (model.Request, error) {
	r, ok := f.byID[id]
	if !ok {
		return model.Request{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRequests) Assign(_ context.Context, id string, staffID uint64, now time.Time) error {
	r, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.AssigneeID = &staffID
	r.Status = model.StatusAssigned
	r.UpdatedAt = now
	f.byID[id] = r
	return nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, id, status string, now time.Time) error {
	r, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = now
	f.byID[id] = r
	return nil
}

type fakeUsers struct {
	byID map[uint64]model.User
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint64]model.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ListByRole(_ context.Context, roles ...string) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.byID {
		if !u.IsActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

type fakeMessages struct {
	appended []model.Message
}

func (f *fakeMessages) Append(_ context.Context, m *model.Message) error {
	f.appended = append(f.appended, *m)
	return nil
}

// delivery records one Notify call.
type delivery struct {
	RecipientID uint64
	Kind        string
	Event       Event
}

type fakeDispatcher struct {
	sent []delivery
}

func (f *fakeDispatcher) Notify(_ context.Context, recipient model.User, kind string, ev Event) {
	f.sent = append(f.sent, delivery{RecipientID: recipient.ID, Kind: kind, Event: ev})
}

// ----- fixtures -----

var (
	citizen     = model.User{ID: 3, Email: "jo@example.com", FullName: "Jo Citizen", Role: model.RoleUser, IsActive: true}
	staffOne    = model.User{ID: 7, Email: "sam@pd.example.com", FullName: "Sam Staff", Role: model.RoleStaff, IsActive: true}
	staffTwo    = model.User{ID: 8, Email: "lee@pd.example.com", FullName: "Lee Staff", Role: model.RoleStaff, IsActive: true}
	adminOne    = model.User{ID: 1, Email: "ada@pd.example.com", FullName: "Ada Admin", Role: model.RoleAdmin, IsActive: true}
	adminTwo    = model.User{ID: 2, Email: "max@pd.example.com", FullName: "Max Admin", Role: model.RoleAdmin, IsActive: true}
	exStaffGone = model.User{ID: 9, Email: "old@pd.example.com", FullName: "Old Staff", Role: model.RoleStaff, IsActive: false}
)

func asActor(u model.User) access.Actor { return access.Actor{ID: u.ID, Role: u.Role} }

func newTestCoordinator(reqs ...model.Request) (*Coordinator, *fakeRequests, *fakeDispatcher) {
	requests := newFakeRequests(reqs...)
	users := newFakeUsers(citizen, staffOne, staffTwo, adminOne, adminTwo, exStaffGone)
	d := &fakeDispatcher{}
	return NewCoordinator(requests, users, &fakeMessages{}, d), requests, d
}

func pendingRequest(id string) model.Request {
	now := time.Now().UTC().Truncate(time.Second)
	return model.Request{
		ID:          id,
		RequesterID: citizen.ID,
		Title:       "Incident report 2026-114",
		Description: "Copy of the incident report filed on Main St.",
		Type:        model.TypeIncidentReport,
		Status:      model.StatusPending,
		Priority:    model.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ----- Create -----

func TestCreateNotifiesEveryAdmin(t *testing.T) {
	co, requests, d := newTestCoordinator()

	req, err := co.Create(context.Background(), asActor(citizen), CreateInput{
		Title:       "Body cam footage",
		Description: "Footage from the stop on 5th Ave",
		Type:        model.TypeBodyCamFootage,
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, model.PriorityMedium, req.Priority)
	assert.Equal(t, citizen.ID, req.RequesterID)
	assert.Nil(t, req.AssigneeID)

	stored, err := requests.GetByID(context.Background(), req.ID)
	assert.NoError(t, err)
	assert.Equal(t, req, stored)

	// Exactly one notification per admin, none for staff or the requester.
	assert.Len(t, d.sent, 2)
	recipients := map[uint64]bool{}
	for _, del := range d.sent {
		recipients[del.RecipientID] = true
		assert.Equal(t, model.TemplateNewRequest, del.Kind)
		assert.Equal(t, req.ID, del.Event.RequestID)
		assert.Equal(t, citizen.FullName, del.Event.RequesterName)
	}
	assert.True(t, recipients[adminOne.ID])
	assert.True(t, recipients[adminTwo.ID])
}

func TestCreateRoundTripsIncidentMetadata(t *testing.T) {
	co, requests, _ := newTestCoordinator()

	in := CreateInput{
		Title:             "Police report, collision on 5th Ave",
		Description:       "Requesting the full report for an insurance claim.",
		Type:              model.TypePoliceReport,
		Priority:          model.PriorityHigh,
		IncidentDate:      "2026-08-14",
		IncidentLocation:  "5th Ave & Pine St",
		CaseNumber:        "2026-004417",
		OfficerNames:      "Ofc. R. Delgado, Sgt. M. Chen",
		VehicleInfo:       "Blue 2019 Honda Civic, plate 7ABC123",
		AdditionalDetails: "Second vehicle left the scene before officers arrived.",
	}
	req, err := co.Create(context.Background(), asActor(citizen), in)
	assert.NoError(t, err)

	// Every populated field reads back exactly as submitted.
	stored, err := requests.GetByID(context.Background(), req.ID)
	assert.NoError(t, err)
	assert.Equal(t, in.Priority, stored.Priority)
	assert.Equal(t, in.IncidentDate, stored.IncidentDate)
	assert.Equal(t, in.IncidentLocation, stored.IncidentLocation)
	assert.Equal(t, in.CaseNumber, stored.CaseNumber)
	assert.Equal(t, in.OfficerNames, stored.OfficerNames)
	assert.Equal(t, in.VehicleInfo, stored.VehicleInfo)
	assert.Equal(t, in.AdditionalDetails, stored.AdditionalDetails)
	assert.Equal(t, req, stored)
}

func TestCreateValidation(t *testing.T) {
	co, _, d := newTestCoordinator()
	ctx := context.Background()

	_, err := co.Create(ctx, asActor(citizen), CreateInput{Description: "d", Type: model.TypeOther})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = co.Create(ctx, asActor(citizen), CreateInput{Title: "t", Type: model.TypeOther})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = co.Create(ctx, asActor(citizen), CreateInput{Title: "t", Description: "d", Type: "subpoena"})
	assert.ErrorIs(t, err, ErrInvalid)

	assert.Empty(t, d.sent)
}

// ----- Assign -----

func TestAssignNotifiesStaff(t *testing.T) {
	co, _, d := newTestCoordinator(pendingRequest("req-1"))

	req, err := co.Assign(context.Background(), asActor(adminOne), "req-1", staffOne.ID)

	assert.NoError(t, err)
	assert.Equal(t, model.StatusAssigned, req.Status)
	if assert.NotNil(t, req.AssigneeID) {
		assert.Equal(t, staffOne.ID, *req.AssigneeID)
	}
	if assert.Len(t, d.sent, 1) {
		assert.Equal(t, staffOne.ID, d.sent[0].RecipientID)
		assert.Equal(t, model.TemplateAssignment, d.sent[0].Kind)
	}
}

func TestAssignDeniedForNonAdmins(t *testing.T) {
	co, _, d := newTestCoordinator(pendingRequest("req-1"))
	ctx := context.Background()

	_, err := co.Assign(ctx, asActor(staffOne), "req-1", staffOne.ID)
	assert.ErrorIs(t, err, access.ErrDenied)

	_, err = co.Assign(ctx, asActor(citizen), "req-1", staffOne.ID)
	assert.ErrorIs(t, err, access.ErrDenied)

	assert.Empty(t, d.sent)
}

func TestAssignRejectsUnusableAssignees(t *testing.T) {
	co, requests, d := newTestCoordinator(pendingRequest("req-1"))
	ctx := context.Background()

	// Unknown id, deactivated staff and a citizen all answer NotFound.
	for _, staffID := range []uint64{999, exStaffGone.ID, citizen.ID} {
		_, err := co.Assign(ctx, asActor(adminOne), "req-1", staffID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	}

	// The request is untouched and nothing was dispatched.
	stored, _ := requests.GetByID(ctx, "req-1")
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.Nil(t, stored.AssigneeID)
	assert.Empty(t, d.sent)
}

func TestReassignOverwritesAssignee(t *testing.T) {
	co, requests, d := newTestCoordinator(pendingRequest("req-1"))
	ctx := context.Background()

	_, err := co.Assign(ctx, asActor(adminOne), "req-1", staffOne.ID)
	assert.NoError(t, err)
	req, err := co.Assign(ctx, asActor(adminOne), "req-1", staffTwo.ID)
	assert.NoError(t, err)

	if assert.NotNil(t, req.AssigneeID) {
		assert.Equal(t, staffTwo.ID, *req.AssigneeID)
	}
	stored, _ := requests.GetByID(ctx, "req-1")
	assert.Equal(t, staffTwo.ID, *stored.AssigneeID)

	// Each assignment notifies its new assignee.
	if assert.Len(t, d.sent, 2) {
		assert.Equal(t, staffOne.ID, d.sent[0].RecipientID)
		assert.Equal(t, staffTwo.ID, d.sent[1].RecipientID)
	}
}

// ----- UpdateStatus -----

func TestUpdateStatusHappyPath(t *testing.T) {
	co, _, d := newTestCoordinator(pendingRequest("req-1"))
	ctx := context.Background()

	_, err := co.Assign(ctx, asActor(adminOne), "req-1", staffOne.ID)
	assert.NoError(t, err)

	req, err := co.UpdateStatus(ctx, asActor(staffOne), "req-1", model.StatusInProgress)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, req.Status)

	req, err = co.UpdateStatus(ctx, asActor(staffOne), "req-1", model.StatusCompleted)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, req.Status)

	// One assignment notification plus one status notification per change,
	// each status one addressed to the requester.
	if assert.Len(t, d.sent, 3) {
		for _, del := range d.sent[1:] {
			assert.Equal(t, citizen.ID, del.RecipientID)
			assert.Equal(t, model.TemplateStatusUpdate, del.Kind)
		}
		assert.Equal(t, model.StatusAssigned, d.sent[1].Event.OldStatus)
		assert.Equal(t, model.StatusInProgress, d.sent[1].Event.NewStatus)
		assert.Equal(t, model.StatusInProgress, d.sent[2].Event.OldStatus)
		assert.Equal(t, model.StatusCompleted, d.sent[2].Event.NewStatus)
	}
}

func TestUpdateStatusTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{model.StatusPending, model.StatusDenied, true},
		{model.StatusPending, model.StatusInProgress, false},
		{model.StatusPending, model.StatusCompleted, false},
		{model.StatusAssigned, model.StatusInProgress, true},
		{model.StatusAssigned, model.StatusDenied, true},
		{model.StatusAssigned, model.StatusCompleted, false},
		{model.StatusInProgress, model.StatusCompleted, true},
		{model.StatusInProgress, model.StatusDenied, true},
		{model.StatusInProgress, model.StatusAssigned, false},
		{model.StatusCompleted, model.StatusDenied, false},
		{model.StatusDenied, model.StatusInProgress, false},
		{model.StatusCompleted, model.StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			req := pendingRequest("req-1")
			req.Status = tt.from
			co, _, _ := newTestCoordinator(req)

			_, err := co.UpdateStatus(context.Background(), asActor(adminOne), "req-1", tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrTransition)
			}
		})
	}
}

func TestUpdateStatusPermissions(t *testing.T) {
	req := pendingRequest("req-1")
	req.Status = model.StatusAssigned
	req.AssigneeID = &staffOne.ID
	co, requests, d := newTestCoordinator(req)
	ctx := context.Background()

	// The requester never drives the lifecycle.
	_, err := co.UpdateStatus(ctx, asActor(citizen), "req-1", model.StatusInProgress)
	assert.ErrorIs(t, err, access.ErrDenied)

	// Staff who do not hold the assignment are denied too.
	_, err = co.UpdateStatus(ctx, asActor(staffTwo), "req-1", model.StatusInProgress)
	assert.ErrorIs(t, err, access.ErrDenied)

	stored, _ := requests.GetByID(ctx, "req-1")
	assert.Equal(t, model.StatusAssigned, stored.Status)
	assert.Empty(t, d.sent)
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	co, _, _ := newTestCoordinator(pendingRequest("req-1"))
	_, err := co.UpdateStatus(context.Background(), asActor(adminOne), "req-1", "archived")
	assert.ErrorIs(t, err, ErrInvalid)
}

// ----- Cancel -----

func TestCancelDeniesAndNotifiesRequester(t *testing.T) {
	req := pendingRequest("req-1")
	req.Status = model.StatusInProgress
	co, _, d := newTestCoordinator(req)

	out, err := co.Cancel(context.Background(), asActor(adminOne), "req-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusDenied, out.Status)

	if assert.Len(t, d.sent, 1) {
		assert.Equal(t, citizen.ID, d.sent[0].RecipientID)
		assert.Equal(t, model.TemplateCancellation, d.sent[0].Kind)
		assert.Equal(t, model.StatusInProgress, d.sent[0].Event.OldStatus)
		assert.Equal(t, model.StatusDenied, d.sent[0].Event.NewStatus)
	}
}

func TestCancelRules(t *testing.T) {
	ctx := context.Background()

	co, _, _ := newTestCoordinator(pendingRequest("req-1"))
	_, err := co.Cancel(ctx, asActor(staffOne), "req-1")
	assert.ErrorIs(t, err, access.ErrDenied)

	done := pendingRequest("req-2")
	done.Status = model.StatusCompleted
	co, _, _ = newTestCoordinator(done)
	_, err = co.Cancel(ctx, asActor(adminOne), "req-2")
	assert.ErrorIs(t, err, ErrTransition)
}

// ----- PostMessage -----

func TestPostMessageSnapshotsSender(t *testing.T) {
	req := pendingRequest("req-1")
	req.AssigneeID = &staffOne.ID
	req.Status = model.StatusAssigned
	requests := newFakeRequests(req)
	users := newFakeUsers(citizen, staffOne, adminOne)
	messages := &fakeMessages{}
	d := &fakeDispatcher{}
	co := NewCoordinator(requests, users, messages, d)

	msg, err := co.PostMessage(context.Background(), asActor(staffOne), "req-1", "  We located the file.  ")

	assert.NoError(t, err)
	assert.Equal(t, "We located the file.", msg.Content)
	assert.Equal(t, staffOne.ID, msg.SenderID)
	assert.Equal(t, staffOne.FullName, msg.SenderName)
	assert.Equal(t, model.RoleStaff, msg.SenderRole)
	assert.Len(t, messages.appended, 1)

	// Messages never fan out notifications.
	assert.Empty(t, d.sent)
}

func TestPostMessageRules(t *testing.T) {
	req := pendingRequest("req-1")
	req.AssigneeID = &staffOne.ID
	co, _, _ := newTestCoordinator(req)
	ctx := context.Background()

	_, err := co.PostMessage(ctx, asActor(staffOne), "req-1", "   ")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = co.PostMessage(ctx, asActor(staffTwo), "req-1", "hello")
	assert.ErrorIs(t, err, access.ErrDenied)

	_, err = co.PostMessage(ctx, asActor(citizen), "missing", "hello")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
