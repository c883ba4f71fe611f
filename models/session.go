package models

import "time"

// Session is a stored login token row. The token value itself is
// recomputable from (ip, userId, username); authorization is equality
// against this row plus the expiry check.
type Session struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
