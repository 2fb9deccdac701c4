package secretlock

import (
	"context"
	"time"
)

// Repository persists secret lock credential state. The failed-attempt
// counter is shared mutable state across concurrent verification requests,
// so RecordFailure must apply the increment-and-maybe-lock step atomically
// at the store level rather than read-modify-write.
type Repository interface {
	Get(ctx context.Context, userID string) (Profile, error)

	// Upsert stores the full credential configuration (setup, PIN change).
	Upsert(ctx context.Context, p Profile) error

	// RecordFailure atomically increments the failed-attempt counter and,
	// when the new count reaches maxAttempts, stamps a lockout expiring
	// after lockout. It returns the post-increment count and the current
	// lockout timestamp, if any.
	RecordFailure(ctx context.Context, userID string, maxAttempts int, lockout time.Duration) (int, *time.Time, error)

	// ResetAttempts zeroes the counter and clears any lockout.
	ResetAttempts(ctx context.Context, userID string) error

	// Clear wipes the lock configuration: hashes and question emptied,
	// enabled false, counters reset. The row itself survives.
	Clear(ctx context.Context, userID string) error
}
