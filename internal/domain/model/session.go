package model

import "time"

// Account is the authentication identity behind a User.
type Account struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Session is a credential issued on sign-in.
type Session struct {
	ID        string
	AccountID string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
