package middlewares

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
	"github.com/c14220110/hospital-dashboard/internal/common/response"
	"github.com/c14220110/hospital-dashboard/internal/common/session"
)

// LoginPath is where the dashboard sends anonymous users.
const LoginPath = "/login"

// LoadSession attaches the caller's session, if any, to the request context.
// It never rejects a request.
func LoadSession(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := m.Load(c)
			if err != nil {
				log.Warn().Err(err).Msg("session store lookup failed")
			}
			if s != nil {
				req := c.Request()
				c.SetRequest(req.WithContext(session.NewContext(req.Context(), s)))
			}
			return next(c)
		}
	}
}

// RequireSession is the session guard for protected endpoints: it rejects
// anonymous callers and expires logins older than the configured timeout.
func RequireSession(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := m.Current(c)
			if errors.Is(err, session.ErrExpired) {
				return response.FailWithStatus(c, http.StatusUnauthorized,
					apperror.Auth("Session expired, please log in again"),
					echo.Map{"redirect": LoginPath, "expired": true})
			}
			if err != nil {
				return response.FailWithStatus(c, http.StatusInternalServerError,
					apperror.Store("Session error", err), nil)
			}
			if s == nil {
				return response.FailWithStatus(c, http.StatusUnauthorized,
					apperror.Auth("Not logged in"),
					echo.Map{"redirect": LoginPath})
			}
			return next(c)
		}
	}
}
