// Package lifecycle enacts record-request state transitions and the
// notification fan-out each one triggers.  It owns the transition table and
// emits exactly one notification event per interested party per
// transition; delivery is delegated to a Dispatcher that never fails the
// primary mutation.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opencivic/records-portal/internal/access"
	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/repository"
)

// ErrInvalid marks malformed input (missing title, unknown enum value).
// Handlers translate it into HTTP 422.
var ErrInvalid = errors.New("invalid input")

// ErrTransition marks a status change the transition table forbids.
// Handlers translate it into HTTP 400.
var ErrTransition = errors.New("invalid status transition")

// RequestStore is the slice of repository.RequestRepo the coordinator
// needs.  Accepting an interface keeps the core unit-testable against an
// in-memory store.
type RequestStore interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id string) (model.Request, error)
	Assign(ctx context.Context, id string, staffID uint64, now time.Time) error
	UpdateStatus(ctx context.Context, id, status string, now time.Time) error
}

// UserStore resolves actors and enumerates fan-out recipients.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	ListByRole(ctx context.Context, roles ...string) ([]model.User, error)
}

// MessageStore appends to a request's conversation thread.
type MessageStore interface {
	Append(ctx context.Context, m *model.Message) error
}

// Event carries the context a dispatcher needs to render one notification.
type Event struct {
	RequestID     string
	RequestTitle  string
	RequesterName string
	OldStatus     string
	NewStatus     string
}

// Dispatcher delivers one notification to one recipient.  Implementations
// must swallow their own failures: a created, assigned or updated request
// always succeeds for its caller even when every delivery channel is down.
type Dispatcher interface {
	Notify(ctx context.Context, recipient model.User, kind string, ev Event)
}

// transitions is the forward-only graph for UpdateStatus.  pending has no
// entry because it only leaves through Assign (or denial); completed and
// denied are terminal.
var transitions = map[string][]string{
	model.StatusPending:    {model.StatusDenied},
	model.StatusAssigned:   {model.StatusInProgress, model.StatusDenied},
	model.StatusInProgress: {model.StatusCompleted, model.StatusDenied},
}

func canTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Coordinator wires the stores and dispatcher together.  All dependencies
// are injected; the zero value is not usable.
type Coordinator struct {
	Requests RequestStore
	Users    UserStore
	Messages MessageStore
	Dispatch Dispatcher
}

func NewCoordinator(requests RequestStore, users UserStore, messages MessageStore, d Dispatcher) *Coordinator {
	return &Coordinator{Requests: requests, Users: users, Messages: messages, Dispatch: d}
}

// CreateInput carries the citizen-supplied fields for a new request.
type CreateInput struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Type              string `json:"type"`
	Priority          string `json:"priority"`
	IncidentDate      string `json:"incident_date"`
	IncidentLocation  string `json:"incident_location"`
	CaseNumber        string `json:"case_number"`
	OfficerNames      string `json:"officer_names"`
	VehicleInfo       string `json:"vehicle_info"`
	AdditionalDetails string `json:"additional_details"`
}

// Create stores a new pending request and notifies every admin.  Any
// authenticated caller may create; the requester is always the caller.
func (co *Coordinator) Create(ctx context.Context, caller access.Actor, in CreateInput) (model.Request, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return model.Request{}, fmt.Errorf("%w: title required", ErrInvalid)
	}
	if in.Description == "" {
		return model.Request{}, fmt.Errorf("%w: description required", ErrInvalid)
	}
	if !model.ValidType(in.Type) {
		return model.Request{}, fmt.Errorf("%w: unknown request type %q", ErrInvalid, in.Type)
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	requester, err := co.Users.GetByID(ctx, caller.ID)
	if err != nil {
		return model.Request{}, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	req := model.Request{
		ID:                uuid.NewString(),
		RequesterID:       caller.ID,
		Title:             in.Title,
		Description:       in.Description,
		Type:              in.Type,
		Status:            model.StatusPending,
		Priority:          in.Priority,
		IncidentDate:      in.IncidentDate,
		IncidentLocation:  in.IncidentLocation,
		CaseNumber:        in.CaseNumber,
		OfficerNames:      in.OfficerNames,
		VehicleInfo:       in.VehicleInfo,
		AdditionalDetails: in.AdditionalDetails,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := co.Requests.Create(ctx, &req); err != nil {
		return model.Request{}, err
	}

	// One notification per admin. Fan-out failures never surface here.
	admins, err := co.Users.ListByRole(ctx, model.RoleAdmin)
	if err == nil {
		ev := Event{RequestID: req.ID, RequestTitle: req.Title, RequesterName: requester.FullName}
		for _, admin := range admins {
			co.Dispatch.Notify(ctx, admin, model.TemplateNewRequest, ev)
		}
	}
	return req, nil
}

// Assign points a request at a staff member.  Admin only; staffID must
// reference an existing active user with role staff or admin, otherwise
// NotFound.  Re-assignment simply overwrites the previous assignee.
func (co *Coordinator) Assign(ctx context.Context, caller access.Actor, requestID string, staffID uint64) (model.Request, error) {
	if !access.CanAssign(caller) {
		return model.Request{}, access.ErrDenied
	}
	req, err := co.Requests.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}
	staff, err := co.Users.GetByID(ctx, staffID)
	if err != nil {
		return model.Request{}, err
	}
	if !staff.IsActive || staff.Role == model.RoleUser {
		return model.Request{}, repository.ErrNotFound
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := co.Requests.Assign(ctx, requestID, staffID, now); err != nil {
		return model.Request{}, err
	}
	req.AssigneeID = &staffID
	req.Status = model.StatusAssigned
	req.UpdatedAt = now

	co.Dispatch.Notify(ctx, staff, model.TemplateAssignment, Event{
		RequestID:    req.ID,
		RequestTitle: req.Title,
		NewStatus:    model.StatusAssigned,
	})
	return req, nil
}

// UpdateStatus moves a request along the transition graph and notifies the
// original requester with the old and new states.
func (co *Coordinator) UpdateStatus(ctx context.Context, caller access.Actor, requestID, newStatus string) (model.Request, error) {
	if !model.ValidStatus(newStatus) {
		return model.Request{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, newStatus)
	}
	req, err := co.Requests.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if err := access.RequireStatusUpdate(caller, req); err != nil {
		return model.Request{}, err
	}
	if !canTransition(req.Status, newStatus) {
		return model.Request{}, fmt.Errorf("%w: %s -> %s", ErrTransition, req.Status, newStatus)
	}

	old := req.Status
	now := time.Now().UTC().Truncate(time.Second)
	if err := co.Requests.UpdateStatus(ctx, requestID, newStatus, now); err != nil {
		return model.Request{}, err
	}
	req.Status = newStatus
	req.UpdatedAt = now

	co.notifyRequester(ctx, req, model.TemplateStatusUpdate, old, newStatus)
	return req, nil
}

// Cancel is the admin-console denial shortcut: it forces a non-terminal
// request to denied and notifies the requester with the cancellation
// template instead of the generic status one.
func (co *Coordinator) Cancel(ctx context.Context, caller access.Actor, requestID string) (model.Request, error) {
	if !access.IsAdmin(caller) {
		return model.Request{}, access.ErrDenied
	}
	req, err := co.Requests.GetByID(ctx, requestID)
	if err != nil {
		return model.Request{}, err
	}
	if model.TerminalStatus(req.Status) {
		return model.Request{}, fmt.Errorf("%w: %s -> %s", ErrTransition, req.Status, model.StatusDenied)
	}

	old := req.Status
	now := time.Now().UTC().Truncate(time.Second)
	if err := co.Requests.UpdateStatus(ctx, requestID, model.StatusDenied, now); err != nil {
		return model.Request{}, err
	}
	req.Status = model.StatusDenied
	req.UpdatedAt = now

	co.notifyRequester(ctx, req, model.TemplateCancellation, old, model.StatusDenied)
	return req, nil
}

// PostMessage appends to the thread.  The permitted caller set matches the
// single-request read rule.  No notification is emitted for messages.
func (co *Coordinator) PostMessage(ctx context.Context, caller access.Actor, requestID, content string) (model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Message{}, fmt.Errorf("%w: content required", ErrInvalid)
	}
	req, err := co.Requests.GetByID(ctx, requestID)
	if err != nil {
		return model.Message{}, err
	}
	if !access.CanMessage(caller, req) {
		return model.Message{}, access.ErrDenied
	}
	sender, err := co.Users.GetByID(ctx, caller.ID)
	if err != nil {
		return model.Message{}, err
	}

	msg := model.Message{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		SenderID:   sender.ID,
		SenderName: sender.FullName,
		SenderRole: sender.Role,
		Content:    content,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if err := co.Messages.Append(ctx, &msg); err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

func (co *Coordinator) notifyRequester(ctx context.Context, req model.Request, kind, old, new string) {
	requester, err := co.Users.GetByID(ctx, req.RequesterID)
	if err != nil {
		// The requester row is gone or unreadable; notification delivery is
		// best-effort so the mutation stands.
		return
	}
	co.Dispatch.Notify(ctx, requester, kind, Event{
		RequestID:     req.ID,
		RequestTitle:  req.Title,
		RequesterName: requester.FullName,
		OldStatus:     old,
		NewStatus:     new,
	})
}
