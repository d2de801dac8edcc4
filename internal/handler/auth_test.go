package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/opencivic/records-portal/internal/config"
	"github.com/opencivic/records-portal/internal/model"
	"github.com/opencivic/records-portal/internal/repository"
)

func newAuthTestHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 30, BcryptCost: 4}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func postJSON(path, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

// Self-registration stores role=user no matter what the body asks for.
func TestRegisterForcesUserRole(t *testing.T) {
	for _, requested := range []string{model.RoleAdmin, model.RoleStaff} {
		t.Run(requested, func(t *testing.T) {
			h, mock := newAuthTestHandler(t)
			created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

			mock.ExpectExec("INSERT INTO users (email, full_name, password_hash, role) VALUES (?,?,?,?)").
				WithArgs("cory@example.com", "Cory Citizen", sqlmock.AnyArg(), model.RoleUser).
				WillReturnResult(sqlmock.NewResult(11, 1))
			mock.ExpectQuery("SELECT id,email,full_name,password_hash,role,is_active,created_at FROM users WHERE id=? LIMIT 1").
				WithArgs(11).
				WillReturnRows(sqlmock.NewRows(
					[]string{"id", "email", "full_name", "password_hash", "role", "is_active", "created_at"}).
					AddRow(11, "cory@example.com", "Cory Citizen", "x", model.RoleUser, true, created))
			mock.ExpectExec("INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)").
				WithArgs(11, sqlmock.AnyArg(), sqlmock.AnyArg()).
				WillReturnResult(sqlmock.NewResult(1, 1))

			body := `{"email":"Cory@Example.com","password":"secret123","full_name":"Cory Citizen","role":"` + requested + `"}`
			req, rec := postJSON("/v1/auth/register", body)
			assert.NoError(t, h.Register(echo.New().NewContext(req, rec)))
			assert.Equal(t, http.StatusCreated, rec.Code)

			var resp authResp
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, model.RoleUser, resp.User.Role)
			assert.Equal(t, "cory@example.com", resp.User.Email)
			assert.NotEmpty(t, resp.Access.Token)
			assert.NotEmpty(t, resp.Refresh.Token)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	h, mock := newAuthTestHandler(t)

	req, rec := postJSON("/v1/auth/register", `{"email":"cory@example.com","password":"secret123"}`)
	assert.NoError(t, h.Register(echo.New().NewContext(req, rec)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
