package profile

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository builds an in-memory profile store for testing and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) Get(_ context.Context, userID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) Upsert(_ context.Context, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	r.profiles[p.UserID] = p
	return nil
}
