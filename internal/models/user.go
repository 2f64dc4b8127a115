package models

import "time"

// Roles a user account can hold
const (
	RoleAdmin    = "admin"
	RoleReporter = "reporter"
)

// User represents a staff or student-monitor account
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Name          string
	Role          string
	OAuthProvider string
	OAuthSubject  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAdmin reports whether the user can manage classes, criteria and reports
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanReport reports whether the user may enter daily logs
func (u *User) CanReport() bool {
	return u.Role == RoleAdmin || u.Role == RoleReporter
}

// Session is the decoded content of a session token
type Session struct {
	UserID    string
	Role      string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
