package entries

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service exposes journal entry operations.
type Service struct {
	repo Repository
}

// NewService builds an entries service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to create an entry.
type CreateInput struct {
	UserID       string
	Title        string
	Content      string
	Mood         string
	EmotionTags  []string
	MediaURLs    []string
	VoiceNoteURL string
	IsPrivate    bool
	IsFavorite   bool
}

// Create stores a new entry for the owner.
func (s *Service) Create(ctx context.Context, input CreateInput) (Entry, error) {
	if strings.TrimSpace(input.Content) == "" {
		return Entry{}, errors.New("content is required")
	}
	if _, err := uuid.Parse(input.UserID); err != nil {
		return Entry{}, err
	}

	now := time.Now().UTC()
	entry := Entry{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		Title:        strings.TrimSpace(input.Title),
		Content:      input.Content,
		Mood:         input.Mood,
		EmotionTags:  input.EmotionTags,
		MediaURLs:    input.MediaURLs,
		VoiceNoteURL: input.VoiceNoteURL,
		IsPrivate:    input.IsPrivate,
		IsFavorite:   input.IsFavorite,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Get retrieves a single entry scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, id string) (Entry, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns the owner's entries, newest first.
func (s *Service) List(ctx context.Context, userID string, filter ListFilter) ([]Entry, error) {
	return s.repo.ListByOwner(ctx, userID, filter)
}

// UpdateInput captures the mutable fields of an entry.
type UpdateInput struct {
	Title        string
	Content      string
	Mood         string
	EmotionTags  []string
	MediaURLs    []string
	VoiceNoteURL string
	IsPrivate    bool
	IsFavorite   bool
}

// Update rewrites an entry's content and metadata.
func (s *Service) Update(ctx context.Context, userID, id string, input UpdateInput) (Entry, error) {
	entry, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}
	if strings.TrimSpace(input.Content) == "" {
		return Entry{}, errors.New("content is required")
	}

	entry.Title = strings.TrimSpace(input.Title)
	entry.Content = input.Content
	entry.Mood = input.Mood
	entry.EmotionTags = input.EmotionTags
	entry.MediaURLs = input.MediaURLs
	entry.VoiceNoteURL = input.VoiceNoteURL
	entry.IsPrivate = input.IsPrivate
	entry.IsFavorite = input.IsFavorite
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Delete removes a single entry.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

// DeletePrivate removes every private entry for the user. Used by the secret
// lock recovery flow; removing an empty set succeeds.
func (s *Service) DeletePrivate(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeletePrivate(ctx, userID)
}
