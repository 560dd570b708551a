package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/c14220110/hospital-dashboard/pkg/utils"
)

type Options struct {
	CookieName string
	Secret     []byte
	Timeout    time.Duration
	Secure     bool
}

// Manager issues, loads and destroys sessions for echo requests.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "hospital_session"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

// SetClock replaces the time source. Tests use it to age sessions.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

func (m *Manager) Now() time.Time { return m.now() }

func (m *Manager) Timeout() time.Duration { return m.opts.Timeout }

// Expired reports whether s has outlived the configured timeout.
func (m *Manager) Expired(s *Session) bool {
	return Expired(s, m.now(), m.opts.Timeout)
}

// Load resolves the request cookie to a stored session. A missing, forged or
// unknown cookie yields (nil, nil).
func (m *Manager) Load(c echo.Context) (*Session, error) {
	cookie, err := c.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	id, err := utils.ParseSessionToken(m.opts.Secret, cookie.Value)
	if err != nil {
		return nil, nil
	}
	s, err := m.store.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Start stores s under a fresh id and sets the cookie. Any session the request
// already carried is destroyed, so the identifier rotates on every login.
func (m *Manager) Start(c echo.Context, s *Session) error {
	ctx := c.Request().Context()
	if old := FromContext(ctx); old != nil && old.ID != "" {
		if err := m.store.Delete(ctx, old.ID); err != nil {
			return err
		}
	}

	s.ID = uuid.NewString()
	if err := m.store.Save(ctx, s, m.opts.Timeout); err != nil {
		return err
	}
	token, err := utils.SignSessionToken(m.opts.Secret, s.ID, s.LoginTime)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetRequest(c.Request().WithContext(NewContext(ctx, s)))
	return nil
}

// Destroy removes s from the store and expires the cookie.
func (m *Manager) Destroy(c echo.Context, s *Session) error {
	ctx := c.Request().Context()
	if s != nil && s.ID != "" {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return err
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetRequest(c.Request().WithContext(NewContext(ctx, nil)))
	return nil
}

// Current returns the request's session if it is authenticated and fresh.
// An expired session is destroyed and reported as anonymous.
func (m *Manager) Current(c echo.Context) (*Session, error) {
	s := FromContext(c.Request().Context())
	if !s.Authenticated() {
		return nil, nil
	}
	if m.Expired(s) {
		if err := m.Destroy(c, s); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}
	return s, nil
}

// ErrExpired is returned by Current when the session timed out.
var ErrExpired = errors.New("session expired")
