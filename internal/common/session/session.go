// Package session holds the server-side admin session: the identity stored at
// login, the stores that keep it between requests, and the cookie plumbing.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout is how long a login stays valid without re-authenticating.
const DefaultTimeout = 2 * time.Hour

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	LoggedIn  bool      `json:"logged_in"`
	LoginTime time.Time `json:"login_time"`
}

// Authenticated reports whether s belongs to a logged-in admin.
func (s *Session) Authenticated() bool {
	return s != nil && s.LoggedIn && s.UserID > 0
}

// Expired reports whether the login recorded in s is older than timeout.
func Expired(s *Session, now time.Time, timeout time.Duration) bool {
	if s == nil {
		return true
	}
	return now.Sub(s.LoginTime) > timeout
}

// Store persists sessions by their opaque id.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
