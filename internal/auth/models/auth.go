package models

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Login log statuses.
const (
	LogSuccess = "success"
	LogFailed  = "failed"
	LogLogout  = "logout"
)

type AdminUser struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	FullName      string     `json:"full_name"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	LoginAttempts int        `json:"-"`
	LockedUntil   *time.Time `json:"-"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

type LoginLog struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	IPAddress     string     `json:"ip_address"`
	UserAgent     string     `json:"user_agent"`
	LoginTime     time.Time  `json:"login_time"`
	LogoutTime    *time.Time `json:"logout_time,omitempty"`
	Status        string     `json:"status"`
	FailureReason string     `json:"failure_reason,omitempty"`
}

// Client identifies where an auth request came from.
type Client struct {
	IP        string
	UserAgent string
}

// NewAdmin is the input of the create-admin command.
type NewAdmin struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     string
}
