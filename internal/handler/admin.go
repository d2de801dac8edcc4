package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/opencivic/records-portal/internal/lifecycle"
	"github.com/opencivic/records-portal/internal/mailer"
	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/repository"
)

// AdminHandler serves the admin console: user management, the request
// master list, email template editing and mail diagnostics.  Every route
// here sits behind the admin role middleware.
type AdminHandler struct {
	Cfg       adminConfig
	Users     *repository.UserRepo
	Requests  *repository.RequestRepo
	Templates *repository.TemplateRepo
	Coord     *lifecycle.Coordinator
	Mail      *mailer.Mailer
}

// adminConfig is the slice of config the console needs.
type adminConfig struct {
	BcryptCost int
}

func NewAdminHandler(bcryptCost int, users *repository.UserRepo, requests *repository.RequestRepo,
	templates *repository.TemplateRepo, coord *lifecycle.Coordinator, mail *mailer.Mailer) *AdminHandler {
	if users == nil || requests == nil || templates == nil || coord == nil || mail == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{
		Cfg:       adminConfig{BcryptCost: bcryptCost},
		Users:     users,
		Requests:  requests,
		Templates: templates,
		Coord:     coord,
		Mail:      mail,
	}
}

// ----- users -----

// ListUsers returns every account, active or not.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// CreateStaff provisions a staff account.  The role field of the body is
// ignored; promoting to admin goes through UpdateUser.
func (h *AdminHandler) CreateStaff(c echo.Context) error {
	return h.createAccount(c, model.RoleStaff)
}

// CreateUser provisions an account with an explicit role, defaulting to
// staff when the body omits one.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	return h.createAccount(c, "")
}

func (h *AdminHandler) createAccount(c echo.Context, forcedRole string) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "email, password and full_name required"})
	}
	role := forcedRole
	if role == "" {
		role = req.Role
		if role == "" {
			role = model.RoleStaff
		}
		if !model.ValidRole(role) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown role"})
		}
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.FullName, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		return writeErr(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

type updateUserReq struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

// UpdateUser changes a user's role and/or email.  Unknown roles are
// rejected; at least one field must be present.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" && req.Email == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "role or email required"})
	}
	if req.Role != "" && !model.ValidRole(req.Role) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	if req.Role != "" {
		if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
			return writeErr(c, err)
		}
	}
	if req.Email != "" {
		if err := h.Users.UpdateEmail(ctx, id, req.Email); err != nil {
			return writeErr(c, err)
		}
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// DeactivateUser soft-deletes an account.  Admins cannot deactivate
// themselves; that would strand the console.
func (h *AdminHandler) DeactivateUser(c echo.Context) error {
	id, err := pathUserID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == actorFrom(c).ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate your own account"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deactivated"})
}

// StaffMembers lists active staff and admin accounts for the assignment
// picker.
func (h *AdminHandler) StaffMembers(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	users, err := h.Users.ListByRole(ctx, model.RoleStaff, model.RoleAdmin)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// ----- requests -----

// MasterList returns every request joined with requester and assignee
// names.
func (h *AdminHandler) MasterList(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	rows, err := h.Requests.MasterList(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Unassigned returns the triage pool.
func (h *AdminHandler) Unassigned(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	requests, err := h.Requests.ListUnassigned(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, requests)
}

// DeleteRequest hard-deletes a request and its thread.
func (h *AdminHandler) DeleteRequest(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	if err := h.Requests.Delete(ctx, c.Param("id")); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "request deleted"})
}

// CancelRequest forces a non-terminal request to denied and notifies the
// requester.
func (h *AdminHandler) CancelRequest(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	req, err := h.Coord.Cancel(ctx, actorFrom(c), c.Param("id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// ----- email templates & mail diagnostics -----

// templateView is an EmailTemplate plus a flag telling the console apart
// a stored row from a built-in default (defaults have no id or
// updated_at until first edited).
type templateView struct {
	model.EmailTemplate
	IsDefault bool `json:"is_default"`
}

// ListTemplates returns all four template kinds, falling back to the
// built-in defaults for kinds never edited.
func (h *AdminHandler) ListTemplates(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()

	stored, err := h.Templates.ListAll(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	byKind := map[string]model.EmailTemplate{}
	for _, t := range stored {
		byKind[t.Kind] = t
	}
	out := []templateView{}
	for _, kind := range []string{
		model.TemplateNewRequest, model.TemplateAssignment,
		model.TemplateStatusUpdate, model.TemplateCancellation,
	} {
		if t, ok := byKind[kind]; ok {
			out = append(out, templateView{EmailTemplate: t})
			continue
		}
		t, _ := mailer.DefaultTemplate(kind)
		out = append(out, templateView{EmailTemplate: t, IsDefault: true})
	}
	return c.JSON(http.StatusOK, out)
}

type templateReq struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// UpdateTemplate writes the subject/body for one kind.
func (h *AdminHandler) UpdateTemplate(c echo.Context) error {
	kind := c.Param("kind")
	if !model.ValidTemplateKind(kind) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown template kind"})
	}
	var req templateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "subject and body required"})
	}

	ctx, cancel := opCtx(c)
	defer cancel()

	t, err := h.Templates.Upsert(ctx, kind, req.Subject, req.Body)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

type testEmailReq struct {
	To string `json:"to"`
}

// TestEmail sends a probe message so admins can verify SMTP settings
// without triggering a real lifecycle event.
func (h *AdminHandler) TestEmail(c echo.Context) error {
	var req testEmailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.To) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to required"})
	}
	if !h.Mail.Enabled() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is not configured"})
	}
	err := h.Mail.Send(strings.TrimSpace(req.To),
		"Records Portal Test Email",
		"<p>This is a test message from the records portal. Your SMTP settings work.</p>")
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "send failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "test email sent"})
}

// EmailConfig shows the effective mail settings, with credentials
// redacted.
func (h *AdminHandler) EmailConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"enabled": h.Mail.Enabled(),
		"server":  h.Mail.Host(),
		"from":    h.Mail.From(),
	})
}

func pathUserID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
