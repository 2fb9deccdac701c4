package secretlock

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidFormat rejects a PIN that is not exactly four digits. The
	// stored counters are never touched in this case.
	ErrInvalidFormat = errors.New("pin must be exactly 4 digits")

	// ErrAnswerRequired rejects an empty security answer.
	ErrAnswerRequired = errors.New("answer is required")

	// ErrNotConfigured indicates the secret lock is not enabled for the user.
	ErrNotConfigured = errors.New("secret lock not enabled")

	// ErrNotFound indicates no security profile exists for the user.
	ErrNotFound = errors.New("security profile not found")

	// ErrConfirmationMismatch rejects an explicit reset whose confirmation
	// phrase does not match the required literal exactly.
	ErrConfirmationMismatch = errors.New("confirmation phrase mismatch")
)

// LockedError is returned while a lockout window is active, or at the moment
// a failed attempt triggers one.
type LockedError struct {
	Until time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, locked until %s", e.Until.UTC().Format(time.RFC3339))
}

// InvalidPINError reports a PIN mismatch with attempts still remaining.
type InvalidPINError struct {
	AttemptsRemaining int
}

func (e *InvalidPINError) Error() string {
	return fmt.Sprintf("invalid pin, %d attempt(s) remaining", e.AttemptsRemaining)
}
