package secretlock

import "time"

// Session is the client-held unlock state persisted from the last successful
// verification. The gate is purely local: expiry alone revokes access, the
// server is never consulted again for an issued token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Unlocked reports whether the session still grants access at the given time.
func (s Session) Unlocked(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiresAt)
}
