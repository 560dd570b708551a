package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/hospital-dashboard/internal/auth/models"
	"github.com/c14220110/hospital-dashboard/internal/auth/services"
	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
	"github.com/c14220110/hospital-dashboard/internal/common/middlewares"
	"github.com/c14220110/hospital-dashboard/internal/common/request"
	"github.com/c14220110/hospital-dashboard/internal/common/response"
	"github.com/c14220110/hospital-dashboard/internal/common/session"
)

type AuthController struct {
	Service  *services.AuthService
	Sessions *session.Manager
}

func NewAuthController(service *services.AuthService, sessions *session.Manager) *AuthController {
	return &AuthController{Service: service, Sessions: sessions}
}

// Handle dispatches the /api/auth actions. It is not behind the session
// guard; actions that need a login check it themselves.
func (ac *AuthController) Handle(c echo.Context) error {
	req, err := request.Read(c)
	if err != nil {
		return response.FailWithStatus(c, http.StatusBadRequest, apperror.Validation("Invalid JSON payload"), nil)
	}
	c.Set("action", req.Action)

	switch req.Action {
	case "login":
		return ac.login(c, req)
	case "logout":
		return ac.logout(c)
	case "check_session":
		return ac.checkSession(c)
	case "change_password":
		return ac.changePassword(c, req)
	case "login_history":
		return ac.loginHistory(c, req)
	case "":
		return response.Fail(c, apperror.Validation("Action is required"))
	default:
		return response.Fail(c, apperror.Validation("Invalid action: %s", req.Action))
	}
}

func client(c echo.Context) models.Client {
	return models.Client{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
}

func (ac *AuthController) login(c echo.Context, req request.ActionRequest) error {
	if c.Request().Method != http.MethodPost {
		return response.FailWithStatus(c, http.StatusMethodNotAllowed, apperror.Validation("Login requires POST"), nil)
	}

	u, err := ac.Service.Login(c.Request().Context(), req.String("username"), req.Raw("password"), client(c))
	if err != nil {
		return response.Fail(c, err)
	}

	s := &session.Session{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		LoggedIn:  true,
		LoginTime: ac.Sessions.Now(),
	}
	if err := ac.Sessions.Start(c, s); err != nil {
		return response.Fail(c, apperror.Store("Failed to start session", err))
	}

	return response.OK(c, echo.Map{
		"message": "Login successful",
		"data":    userPayload(s),
	})
}

func (ac *AuthController) logout(c echo.Context) error {
	s := session.FromContext(c.Request().Context())
	if s.Authenticated() {
		ac.Service.Logout(c.Request().Context(), s.UserID, s.Username, s.LoginTime, client(c))
	}
	if err := ac.Sessions.Destroy(c, s); err != nil {
		return response.Fail(c, apperror.Store("Failed to end session", err))
	}
	return response.OK(c, echo.Map{"message": "Logged out successfully"})
}

func (ac *AuthController) checkSession(c echo.Context) error {
	s, err := ac.Sessions.Current(c)
	if errors.Is(err, session.ErrExpired) {
		return c.JSON(http.StatusOK, echo.Map{
			"success":   false,
			"logged_in": false,
			"expired":   true,
			"error":     "Session expired, please log in again",
		})
	}
	if err != nil {
		return response.Fail(c, apperror.Store("Session error", err))
	}
	if s == nil {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "logged_in": false})
	}

	return response.OK(c, echo.Map{
		"logged_in": true,
		"data":      userPayload(s),
		"session": echo.Map{
			"login_time": s.LoginTime,
			"expires_at": s.LoginTime.Add(ac.Sessions.Timeout()),
		},
	})
}

// requireLogin returns the caller's session, or writes the guard response and
// returns nil.
func (ac *AuthController) requireLogin(c echo.Context) (*session.Session, error) {
	s, err := ac.Sessions.Current(c)
	if errors.Is(err, session.ErrExpired) {
		return nil, response.FailWithStatus(c, http.StatusUnauthorized,
			apperror.Auth("Session expired, please log in again"),
			echo.Map{"redirect": middlewares.LoginPath, "expired": true})
	}
	if err != nil {
		return nil, response.Fail(c, apperror.Store("Session error", err))
	}
	if s == nil {
		return nil, response.FailWithStatus(c, http.StatusUnauthorized,
			apperror.Auth("Not logged in"), echo.Map{"redirect": middlewares.LoginPath})
	}
	return s, nil
}

func (ac *AuthController) changePassword(c echo.Context, req request.ActionRequest) error {
	s, err := ac.requireLogin(c)
	if s == nil {
		return err
	}
	err = ac.Service.ChangePassword(c.Request().Context(), s.UserID,
		req.Raw("current_password"), req.Raw("new_password"), req.Raw("confirm_password"))
	if err != nil {
		return response.Fail(c, err)
	}
	return response.OK(c, echo.Map{"message": "Password changed successfully"})
}

func (ac *AuthController) loginHistory(c echo.Context, req request.ActionRequest) error {
	s, err := ac.requireLogin(c)
	if s == nil {
		return err
	}
	limit, _ := strconv.Atoi(req.String("limit"))
	history, err := ac.Service.LoginHistory(c.Request().Context(), s.UserID, limit)
	if err != nil {
		return response.Fail(c, err)
	}
	return response.OK(c, echo.Map{"data": history})
}

func userPayload(s *session.Session) echo.Map {
	return echo.Map{
		"id":        s.UserID,
		"username":  s.Username,
		"email":     s.Email,
		"full_name": s.FullName,
		"role":      s.Role,
	}
}
