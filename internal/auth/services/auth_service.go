package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/c14220110/hospital-dashboard/internal/auth/models"
	"github.com/c14220110/hospital-dashboard/internal/common/apperror"
	"github.com/c14220110/hospital-dashboard/pkg/storage/mariadb"
	"github.com/c14220110/hospital-dashboard/pkg/utils"
)

// InvalidCredentials is the only message a failed login ever returns.
const InvalidCredentials = "Invalid username or password"

const MinPasswordLength = 6

// Column widths of login_logs, in characters.
const (
	maxLogUsername  = 50
	maxLogIP        = 45
	maxLogUserAgent = 255
)

type AuthService struct {
	DB *sql.DB
	// MaxAttempts of zero disables lockout.
	MaxAttempts     int
	LockoutDuration time.Duration

	now   func() time.Time
	check func(hash, password string) bool
}

func NewAuthService(db *sql.DB, maxAttempts int, lockout time.Duration) *AuthService {
	return &AuthService{DB: db, MaxAttempts: maxAttempts, LockoutDuration: lockout, now: time.Now, check: utils.CheckPassword}
}

// SetClock replaces the time source.
func (s *AuthService) SetClock(now func() time.Time) { s.now = now }

// Login verifies the credentials of an active admin. Unknown users, inactive
// users, wrong passwords and locked accounts all fail with InvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string, client models.Client) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Validation("Username and password are required")
	}
	now := s.now()

	u, err := s.findActive(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown users pay for a hash comparison too, so timing does not
		// reveal which usernames exist.
		s.check(utils.DummyPasswordHash(), password)
		s.logAttempt(ctx, nil, username, client, now, models.LogFailed, "unknown or inactive user")
		return nil, apperror.Auth(InvalidCredentials)
	}
	if err != nil {
		return nil, apperror.Store("Login failed", err)
	}

	matched := s.check(u.PasswordHash, password)

	if s.MaxAttempts > 0 && u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		s.logAttempt(ctx, &u.ID, username, client, now, models.LogFailed, "account locked")
		return nil, apperror.Auth(InvalidCredentials)
	}

	if !matched {
		if err := s.recordFailure(ctx, u, now); err != nil {
			return nil, err
		}
		s.logAttempt(ctx, &u.ID, username, client, now, models.LogFailed, "wrong password")
		return nil, apperror.Auth(InvalidCredentials)
	}

	if _, err := s.DB.ExecContext(ctx,
		"UPDATE admin_users SET last_login = ?, login_attempts = 0, locked_until = NULL WHERE id = ?",
		now, u.ID); err != nil {
		return nil, apperror.Store("Login failed", err)
	}
	u.LastLogin = &now
	u.LoginAttempts = 0
	u.LockedUntil = nil

	s.logAttempt(ctx, &u.ID, username, client, now, models.LogSuccess, "")
	log.Info().Str("user", u.Username).Str("ip", client.IP).Msg("login")
	return u, nil
}

func (s *AuthService) findActive(ctx context.Context, username string) (*models.AdminUser, error) {
	var (
		u           models.AdminUser
		lockedUntil sql.NullTime
		lastLogin   sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password, full_name, role, status, login_attempts, locked_until, last_login
		FROM admin_users
		WHERE username = ? AND status = ?`, username, models.StatusActive).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.Status,
			&u.LoginAttempts, &lockedUntil, &lastLogin)
	if err != nil {
		return nil, err
	}
	if lockedUntil.Valid {
		u.LockedUntil = &lockedUntil.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

// recordFailure counts a wrong password and locks the account once the limit
// is reached. It is a no-op while lockout is disabled.
func (s *AuthService) recordFailure(ctx context.Context, u *models.AdminUser, now time.Time) error {
	if s.MaxAttempts <= 0 {
		return nil
	}
	attempts := u.LoginAttempts + 1
	var lockedUntil interface{}
	if attempts >= s.MaxAttempts {
		lockedUntil = now.Add(s.LockoutDuration)
		attempts = 0
		log.Warn().Str("user", u.Username).Dur("for", s.LockoutDuration).Msg("account locked")
	}
	if _, err := s.DB.ExecContext(ctx,
		"UPDATE admin_users SET login_attempts = ?, locked_until = ? WHERE id = ?",
		attempts, lockedUntil, u.ID); err != nil {
		return apperror.Store("Login failed", err)
	}
	return nil
}

// logAttempt writes a login_logs row. Audit failures are logged, not returned.
func (s *AuthService) logAttempt(ctx context.Context, userID *int64, username string, client models.Client, at time.Time, status, reason string) {
	var (
		uid       interface{}
		reasonArg interface{}
	)
	if userID != nil {
		uid = *userID
	}
	if reason != "" {
		reasonArg = reason
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO login_logs (user_id, username, ip_address, user_agent, login_time, status, failure_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uid, truncate(username, maxLogUsername), truncate(client.IP, maxLogIP), truncate(client.UserAgent, maxLogUserAgent), at, status, reasonArg)
	if err != nil {
		log.Error().Err(err).Str("user", username).Str("status", status).Msg("write login log")
	}
}

// Logout records the end of a session that started at loginTime.
func (s *AuthService) Logout(ctx context.Context, userID int64, username string, loginTime time.Time, client models.Client) {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO login_logs (user_id, username, ip_address, user_agent, login_time, logout_time, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, truncate(username, maxLogUsername), truncate(client.IP, maxLogIP), truncate(client.UserAgent, maxLogUserAgent), loginTime, s.now(), models.LogLogout)
	if err != nil {
		log.Error().Err(err).Str("user", username).Msg("write logout log")
		return
	}
	log.Info().Str("user", username).Msg("logout")
}

// ChangePassword replaces the password of userID after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return apperror.Validation("All password fields are required")
	}
	if len(next) < MinPasswordLength {
		return apperror.Validation("New password must be at least %d characters long", MinPasswordLength)
	}
	if next != confirm {
		return apperror.Validation("New passwords do not match")
	}

	var hash string
	err := s.DB.QueryRowContext(ctx, "SELECT password FROM admin_users WHERE id = ?", userID).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("User not found")
	}
	if err != nil {
		return apperror.Store("Failed to change password", err)
	}
	if !s.check(hash, current) {
		return apperror.Auth("Current password is incorrect")
	}

	newHash, err := utils.HashPassword(next)
	if err != nil {
		return apperror.Store("Failed to change password", err)
	}
	if _, err := s.DB.ExecContext(ctx, "UPDATE admin_users SET password = ? WHERE id = ?", newHash, userID); err != nil {
		return apperror.Store("Failed to change password", err)
	}
	log.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

// LoginHistory returns the most recent login_logs rows of userID.
func (s *AuthService) LoginHistory(ctx context.Context, userID int64, limit int) ([]models.LoginLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, username, ip_address, user_agent, login_time, logout_time, status, failure_reason
		FROM login_logs
		WHERE user_id = ?
		ORDER BY login_time DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, apperror.Store("Failed to fetch login history", err)
	}
	defer rows.Close()

	history := []models.LoginLog{}
	for rows.Next() {
		var (
			l          models.LoginLog
			ip, ua     sql.NullString
			logoutTime sql.NullTime
			reason     sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Username, &ip, &ua, &l.LoginTime, &logoutTime, &l.Status, &reason); err != nil {
			return nil, apperror.Store("Failed to read login history", err)
		}
		l.IPAddress, l.UserAgent, l.FailureReason = ip.String, ua.String, reason.String
		if logoutTime.Valid {
			l.LogoutTime = &logoutTime.Time
		}
		history = append(history, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("Failed to read login history", err)
	}
	return history, nil
}

// CreateAdmin inserts an active admin account.
func (s *AuthService) CreateAdmin(ctx context.Context, in models.NewAdmin) (int64, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Role == "" {
		in.Role = "admin"
	}

	var missing []string
	for _, f := range []struct{ label, value string }{
		{"username", in.Username}, {"password", in.Password}, {"email", in.Email}, {"full name", in.FullName},
	} {
		if f.value == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return 0, apperror.Validation("Missing required fields: %s", strings.Join(missing, ", "))
	}
	if len(in.Password) < MinPasswordLength {
		return 0, apperror.Validation("Password must be at least %d characters long", MinPasswordLength)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return 0, apperror.Store("Failed to create admin", err)
	}
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO admin_users (username, email, password, full_name, role, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.Username, in.Email, hash, in.FullName, in.Role, models.StatusActive)
	if mariadb.IsDuplicateEntry(err) {
		return 0, apperror.Conflict("Username %s is already taken", in.Username)
	}
	if err != nil {
		return 0, apperror.Store("Failed to create admin", err)
	}
	return res.LastInsertId()
}

// truncate keeps at most n characters of s and never splits a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
