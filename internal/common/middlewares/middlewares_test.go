package middlewares

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/hospital-dashboard/internal/common/session"
)

func newManager() *session.Manager {
	return session.NewManager(session.NewMemoryStore(), session.Options{
		Secret:  []byte("0123456789abcdef"),
		Timeout: 2 * time.Hour,
	})
}

// login issues a session through the manager and returns its cookie.
func login(t *testing.T, m *session.Manager, loginTime time.Time) *http.Cookie {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth", nil), rec)
	require.NoError(t, m.Start(c, &session.Session{UserID: 1, Username: "admin", LoggedIn: true, LoginTime: loginTime}))
	return rec.Result().Cookies()[0]
}

func newServer(m *session.Manager) *echo.Echo {
	e := echo.New()
	e.Use(LoadSession(m))
	e.GET("/api/patients", func(c echo.Context) error {
		s := session.FromContext(c.Request().Context())
		return c.JSON(http.StatusOK, echo.Map{"success": true, "user": s.Username})
	}, RequireSession(m))
	return e
}

func serve(e *echo.Echo, cookie *http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestRequireSession_Anonymous(t *testing.T) {
	e := newServer(newManager())

	rec, body := serve(e, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not logged in", body["error"])
	assert.Equal(t, LoginPath, body["redirect"])
}

func TestRequireSession_Authenticated(t *testing.T) {
	m := newManager()
	cookie := login(t, m, time.Now())

	rec, body := serve(newServer(m), cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", body["user"])
}

func TestRequireSession_ExpiredIsAnonymous(t *testing.T) {
	m := newManager()
	loginTime := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cookie := login(t, m, loginTime)
	m.SetClock(func() time.Time { return loginTime.Add(2*time.Hour + time.Minute) })
	e := newServer(m)

	rec, body := serve(e, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, true, body["expired"])

	// the expired session is gone for good
	rec, body = serve(e, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not logged in", body["error"])
}

func TestRecovery(t *testing.T) {
	e := echo.New()
	e.Use(Recovery(zerolog.Nop()))
	e.GET("/boom", func(c echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(Logger(zerolog.New(&buf)))
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health?action=list", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"path":"/health"`)
	assert.Contains(t, buf.String(), `"action":"list"`)
	assert.Contains(t, buf.String(), `"status":200`)
}
