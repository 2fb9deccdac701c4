package secretlock

import "time"

// Profile holds the per-user secret lock credential state. Hash fields are
// hex-encoded keyed digests; plaintext PINs and answers are never stored.
type Profile struct {
	UserID             string
	PINHash            string
	SecurityQuestion   string
	SecurityAnswerHash string
	Enabled            bool
	FailedAttempts     int
	LockedUntil        *time.Time
	UpdatedAt          time.Time
}

// Unlock is the proof of a successful PIN verification. The token is derived
// from the user id and expiry and is held client-side only.
type Unlock struct {
	Token     string
	ExpiresAt time.Time
}

// RecoverResult reports the outcome of a recovery or reset attempt. Deleted
// is true only when the destructive wipe ran.
type RecoverResult struct {
	Success bool
	Deleted bool
}
