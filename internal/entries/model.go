package entries

import "time"

// Entry is a single journal entry with its mood and media metadata.
type Entry struct {
	ID           string
	UserID       string
	Title        string
	Content      string
	Mood         string
	EmotionTags  []string
	MediaURLs    []string
	VoiceNoteURL string
	IsPrivate    bool
	IsFavorite   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
