package routes

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hospital-dashboard/config"
	"github.com/c14220110/hospital-dashboard/internal/common/middlewares"
	"github.com/c14220110/hospital-dashboard/internal/common/session"
	"github.com/c14220110/hospital-dashboard/ws"
)

func newServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sessions := session.NewManager(session.NewMemoryStore(), session.Options{
		Secret:  []byte("0123456789abcdef"),
		Timeout: 2 * time.Hour,
	})

	e := echo.New()
	e.Use(middlewares.LoadSession(sessions))
	Init(e, Deps{
		DB:       db,
		Config:   &config.Config{SessionTimeout: 2 * time.Hour},
		Sessions: sessions,
		Hub:      ws.NewHub(),
		Upgrader: ws.NewUpgrader(nil),
	})
	return e, mock
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestInit_ProtectedRoutesRequireSession(t *testing.T) {
	e, _ := newServer(t)

	for _, path := range []string{
		"/api/patients?action=list",
		"/api/doctors?action=list",
		"/api/departments?action=list",
		"/api/appointments?action=list",
		"/api/medical-reports?action=list",
		"/api/overview",
		"/ws",
	} {
		rec := serve(e, http.MethodGet, path)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"redirect":"/login"`, path)
	}
}

func TestInit_AuthIsPublic(t *testing.T) {
	e, _ := newServer(t)

	rec := serve(e, http.MethodGet, "/api/auth?action=check_session")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":false,"logged_in":false}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	e, mock := newServer(t)

	mock.ExpectPing()
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health").Code)

	mock.ExpectPing().WillReturnError(errors.New("dial tcp 10.1.2.3:3306: connect: connection refused"))
	rec := serve(e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"success":false,"status":"unavailable","database":"down"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "10.1.2.3")
}
