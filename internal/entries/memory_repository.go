package entries

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]Entry // keyed by entry id
}

// NewMemoryRepository builds an in-memory entry store for testing and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{entries: make(map[string]Entry)}
}

func (r *memoryRepository) Create(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *memoryRepository) Get(_ context.Context, userID, id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, userID string, filter ListFilter) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Entry
	for _, entry := range r.entries {
		if entry.UserID != userID {
			continue
		}
		if entry.IsPrivate && !filter.IncludePrivate {
			continue
		}
		if filter.FavoritesOnly && !entry.IsFavorite {
			continue
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *memoryRepository) Update(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return ErrNotFound
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memoryRepository) DeletePrivate(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, entry := range r.entries {
		if entry.UserID == userID && entry.IsPrivate {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}
