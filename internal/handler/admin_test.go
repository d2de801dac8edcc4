package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/opencivic/records-portal/internal/config"
	"github.com/opencivic/records-portal/internal/lifecycle"
	"github.com/opencivic/records-portal/internal/mailer"
	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/notify"
	"github.com/opencivic/records-portal/internal/repository"
)

func newAdminTestHandler(t *testing.T) (*AdminHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repository.NewUserRepo(db)
	requests := repository.NewRequestRepo(db)
	templates := repository.NewTemplateRepo(db)
	mail := mailer.New(config.Config{})
	dispatcher := notify.NewDispatcher(repository.NewNotificationRepo(db), templates, mail, "")
	coord := lifecycle.NewCoordinator(requests, users, repository.NewMessageRepo(db), dispatcher)
	return NewAdminHandler(4, users, requests, templates, coord, mail), mock
}

// The template list always covers all four kinds; kinds never edited come
// from the built-in defaults and are flagged so the console can tell them
// apart from stored rows.
func TestListTemplatesMarksDefaults(t *testing.T) {
	h, mock := newAdminTestHandler(t)
	updated := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id,kind,subject,body,updated_at FROM email_templates ORDER BY kind").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "subject", "body", "updated_at"}).
			AddRow("tmpl-1", model.TemplateAssignment, "Edited subject", "Edited body", updated))

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/email-templates", nil)
	rec := httptest.NewRecorder()
	assert.NoError(t, h.ListTemplates(echo.New().NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out []templateView
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 4)
	byKind := map[string]templateView{}
	for _, v := range out {
		byKind[v.Kind] = v
	}

	edited := byKind[model.TemplateAssignment]
	assert.False(t, edited.IsDefault)
	assert.Equal(t, "tmpl-1", edited.ID)
	assert.Equal(t, "Edited subject", edited.Subject)
	assert.Equal(t, updated, edited.UpdatedAt)

	for _, kind := range []string{model.TemplateNewRequest, model.TemplateStatusUpdate, model.TemplateCancellation} {
		def := byKind[kind]
		assert.True(t, def.IsDefault, kind)
		assert.Empty(t, def.ID)
		assert.NotEmpty(t, def.Subject)
		assert.NotEmpty(t, def.Body)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
