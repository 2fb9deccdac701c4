package secretlock

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.Mutex
	profiles map[string]Profile
}

// NewMemoryRepository builds an in-memory credential store for testing and
// dev mode. The mutex serializes RecordFailure so the increment-and-lock
// step stays atomic, matching the Postgres single-statement behavior.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) Get(_ context.Context, userID string) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) Upsert(_ context.Context, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	r.profiles[p.UserID] = p
	return nil
}

func (r *memoryRepository) RecordFailure(_ context.Context, userID string, maxAttempts int, lockout time.Duration) (int, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return 0, nil, ErrNotFound
	}
	now := time.Now().UTC()
	p.FailedAttempts++
	if p.FailedAttempts > maxAttempts {
		p.FailedAttempts = maxAttempts
	}
	if p.FailedAttempts >= maxAttempts && (p.LockedUntil == nil || !p.LockedUntil.After(now)) {
		until := now.Add(lockout)
		p.LockedUntil = &until
	}
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return p.FailedAttempts, p.LockedUntil, nil
}

func (r *memoryRepository) ResetAttempts(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	p.FailedAttempts = 0
	p.LockedUntil = nil
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return nil
}

func (r *memoryRepository) Clear(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil
	}
	p.PINHash = ""
	p.SecurityQuestion = ""
	p.SecurityAnswerHash = ""
	p.Enabled = false
	p.FailedAttempts = 0
	p.LockedUntil = nil
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return nil
}
