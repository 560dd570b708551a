package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/c14220110/hospital-dashboard/internal/auth/services"
	"github.com/c14220110/hospital-dashboard/internal/common/middlewares"
	"github.com/c14220110/hospital-dashboard/internal/common/session"
)

type harness struct {
	t       *testing.T
	mock    sqlmock.Sqlmock
	store   *session.MemoryStore
	handler echo.HandlerFunc
	now     time.Time
	cookie  *http.Cookie
}

func newHarness(t *testing.T) *harness {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	h := &harness{t: t, mock: mock, store: session.NewMemoryStore(), now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	m := session.NewManager(h.store, session.Options{Secret: []byte("0123456789abcdef"), Timeout: 2 * time.Hour})
	m.SetClock(func() time.Time { return h.now })

	svc := services.NewAuthService(db, 0, 0)
	svc.SetClock(func() time.Time { return h.now })
	h.handler = middlewares.LoadSession(m)(NewAuthController(svc, m).Handle)
	return h
}

func (h *harness) do(method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rec := httptest.NewRecorder()
	require.NoError(h.t, h.handler(echo.New().NewContext(req, rec)))

	for _, c := range rec.Result().Cookies() {
		if c.Name == "hospital_session" {
			if c.MaxAge < 0 {
				h.cookie = nil
			} else {
				h.cookie = c
			}
		}
	}

	var out map[string]interface{}
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func (h *harness) expectLogin(id int64, username, password string) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(h.t, err)
	h.mock.ExpectQuery(regexp.QuoteMeta("FROM admin_users")).
		WithArgs(username, "active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "full_name", "role", "status", "login_attempts", "locked_until", "last_login"}).
			AddRow(id, username, username+"@h.test", string(hashed), "Site Admin", "admin", "active", 0, nil, nil))
	h.mock.ExpectExec("UPDATE admin_users").WillReturnResult(sqlmock.NewResult(0, 1))
	h.mock.ExpectExec("INSERT INTO login_logs").WillReturnResult(sqlmock.NewResult(1, 1))
}

func TestAuth_LoginCheckLogout(t *testing.T) {
	h := newHarness(t)

	_, out := h.do(http.MethodGet, "/api/auth?action=check_session", "")
	assert.Equal(t, false, out["success"])
	assert.Equal(t, false, out["logged_in"])

	h.expectLogin(1, "admin", "secret1")
	rec, out := h.do(http.MethodPost, "/api/auth", `{"action":"login","username":"admin","password":"secret1"}`)
	require.Equal(t, true, out["success"], out)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, h.cookie)
	assert.True(t, h.cookie.HttpOnly)
	assert.Equal(t, 1, h.store.Len())

	_, out = h.do(http.MethodGet, "/api/auth?action=check_session", "")
	assert.Equal(t, true, out["success"])
	assert.Equal(t, true, out["logged_in"])
	assert.Equal(t, "admin", out["data"].(map[string]interface{})["username"])

	h.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO login_logs")).WillReturnResult(sqlmock.NewResult(2, 1))
	_, out = h.do(http.MethodPost, "/api/auth", `{"action":"logout"}`)
	assert.Equal(t, true, out["success"])
	assert.Nil(t, h.cookie)
	assert.Equal(t, 0, h.store.Len())
}

func TestAuth_LoginRotatesSessionID(t *testing.T) {
	h := newHarness(t)

	h.expectLogin(1, "admin", "secret1")
	h.do(http.MethodPost, "/api/auth", `{"action":"login","username":"admin","password":"secret1"}`)
	first := h.cookie.Value

	h.expectLogin(1, "admin", "secret1")
	h.do(http.MethodPost, "/api/auth", `{"action":"login","username":"admin","password":"secret1"}`)

	assert.NotEqual(t, first, h.cookie.Value)
	assert.Equal(t, 1, h.store.Len())
}

func TestAuth_SessionExpiresAfterTimeout(t *testing.T) {
	h := newHarness(t)

	h.expectLogin(1, "admin", "secret1")
	h.do(http.MethodPost, "/api/auth", `{"action":"login","username":"admin","password":"secret1"}`)

	h.now = h.now.Add(2*time.Hour + time.Minute)
	_, out := h.do(http.MethodGet, "/api/auth?action=check_session", "")
	assert.Equal(t, false, out["logged_in"])
	assert.Equal(t, true, out["expired"])
}

func TestAuth_LoginFailureMessage(t *testing.T) {
	h := newHarness(t)
	h.mock.ExpectQuery("FROM admin_users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "full_name", "role", "status", "login_attempts", "locked_until", "last_login"}))
	h.mock.ExpectExec("INSERT INTO login_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	rec, out := h.do(http.MethodPost, "/api/auth", `{"action":"login","username":"ghost","password":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, services.InvalidCredentials, out["error"])
	assert.Nil(t, h.cookie)
}

func TestAuth_LoginRequiresPost(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.do(http.MethodGet, "/api/auth?action=login&username=admin&password=secret1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuth_ChangePasswordRequiresLogin(t *testing.T) {
	h := newHarness(t)

	rec, out := h.do(http.MethodPost, "/api/auth", `{"action":"change_password","current_password":"a","new_password":"bbbbbb","confirm_password":"bbbbbb"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", out["redirect"])
}

func TestAuth_ChangePasswordMismatch(t *testing.T) {
	h := newHarness(t)
	h.expectLogin(1, "admin", "secret1")
	h.do(http.MethodPost, "/api/auth", `{"action":"login","username":"admin","password":"secret1"}`)

	_, out := h.do(http.MethodPost, "/api/auth", `{"action":"change_password","current_password":"secret1","new_password":"abcdef","confirm_password":"abcdeg"}`)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "New passwords do not match", out["error"])
}
