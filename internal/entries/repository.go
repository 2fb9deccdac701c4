package entries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no entry matches the lookup for the owner.
var ErrNotFound = errors.New("entry not found")

// ListFilter narrows a listing. When IncludePrivate is false, private
// entries are excluded regardless of the client's unlock state.
type ListFilter struct {
	IncludePrivate bool
	FavoritesOnly  bool
}

// Repository persists journal entries.
type Repository interface {
	Create(ctx context.Context, entry Entry) error
	Get(ctx context.Context, userID, id string) (Entry, error)
	ListByOwner(ctx context.Context, userID string, filter ListFilter) ([]Entry, error)
	Update(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, userID, id string) error

	// DeletePrivate removes every private entry for the user and returns
	// the number removed. Zero is success.
	DeletePrivate(ctx context.Context, userID string) (int64, error)
}

// PostgresRepository stores entries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an entry record.
func (r *PostgresRepository) Create(ctx context.Context, entry Entry) error {
	entryID, err := uuid.Parse(entry.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(entry.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO journal_entries
        (id, user_id, title, content, mood, emotion_tags, media_urls, voice_note_url, is_private, is_favorite, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		entryID, userID, entry.Title, entry.Content, entry.Mood, entry.EmotionTags, entry.MediaURLs,
		entry.VoiceNoteURL, entry.IsPrivate, entry.IsFavorite, entry.CreatedAt.UTC(), entry.UpdatedAt.UTC())
	return err
}

const entryColumns = `id, user_id, title, content, mood, emotion_tags, media_urls, voice_note_url,
        is_private, is_favorite, created_at, updated_at`

// Get fetches a single entry scoped to its owner.
func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (Entry, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, ErrNotFound
	}
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return Entry{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = $1 AND user_id = $2`, entryID, ownerID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

// ListByOwner returns the owner's entries, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string, filter ListFilter) ([]Entry, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE user_id = $1`
	if !filter.IncludePrivate {
		query += ` AND is_private = FALSE`
	}
	if filter.FavoritesOnly {
		query += ` AND is_favorite = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Update rewrites the mutable fields of an entry.
func (r *PostgresRepository) Update(ctx context.Context, entry Entry) error {
	entryID, err := uuid.Parse(entry.ID)
	if err != nil {
		return ErrNotFound
	}
	ownerID, err := uuid.Parse(entry.UserID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE journal_entries SET
        title = $1, content = $2, mood = $3, emotion_tags = $4, media_urls = $5,
        voice_note_url = $6, is_private = $7, is_favorite = $8, updated_at = $9
        WHERE id = $10 AND user_id = $11`,
		entry.Title, entry.Content, entry.Mood, entry.EmotionTags, entry.MediaURLs,
		entry.VoiceNoteURL, entry.IsPrivate, entry.IsFavorite, entry.UpdatedAt.UTC(), entryID, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a single entry scoped to its owner.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`, entryID, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePrivate removes all private entries for the user.
func (r *PostgresRepository) DeletePrivate(ctx context.Context, userID string) (int64, error) {
	ownerID, err := uuid.Parse(userID)
	if err != nil {
		return 0, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE user_id = $1 AND is_private = TRUE`, ownerID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		id        uuid.UUID
		userID    uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		entry     Entry
	)
	if err := row.Scan(&id, &userID, &entry.Title, &entry.Content, &entry.Mood, &entry.EmotionTags,
		&entry.MediaURLs, &entry.VoiceNoteURL, &entry.IsPrivate, &entry.IsFavorite, &createdAt, &updatedAt); err != nil {
		return Entry{}, err
	}
	entry.ID = id.String()
	entry.UserID = userID.String()
	entry.CreatedAt = createdAt.UTC()
	entry.UpdatedAt = updatedAt.UTC()
	return entry, nil
}
