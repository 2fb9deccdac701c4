package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no profile row exists for the user.
var ErrNotFound = errors.New("profile not found")

// Profile holds per-user display preferences. The fields are an enumerated
// structure on purpose: settings updates replace named columns, never merge
// arbitrary payloads.
type Profile struct {
	UserID               string
	Username             string
	Theme                string
	ThemeVariant         string
	FontPreference       string
	FontSize             string
	LanguagePreference   string
	NotificationsEnabled bool
	CreatedAt            time.Time
}

// Repository persists profiles.
type Repository interface {
	Get(ctx context.Context, userID string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
}

// PostgresRepository stores profiles in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches the profile for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (Profile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Profile{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT user_id, username, theme, theme_variant, font_preference,
        font_size, language_preference, notifications_enabled, created_at
        FROM profiles WHERE user_id = $1`, uid)

	var (
		id        uuid.UUID
		createdAt time.Time
		p         Profile
	)
	if err := row.Scan(&id, &p.Username, &p.Theme, &p.ThemeVariant, &p.FontPreference,
		&p.FontSize, &p.LanguagePreference, &p.NotificationsEnabled, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.UserID = id.String()
	p.CreatedAt = createdAt.UTC()
	return p, nil
}

// Upsert stores the profile, replacing all preference columns.
func (r *PostgresRepository) Upsert(ctx context.Context, p Profile) error {
	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO profiles
        (user_id, username, theme, theme_variant, font_preference, font_size, language_preference, notifications_enabled, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
        ON CONFLICT (user_id) DO UPDATE SET
            username = EXCLUDED.username,
            theme = EXCLUDED.theme,
            theme_variant = EXCLUDED.theme_variant,
            font_preference = EXCLUDED.font_preference,
            font_size = EXCLUDED.font_size,
            language_preference = EXCLUDED.language_preference,
            notifications_enabled = EXCLUDED.notifications_enabled`,
		uid, p.Username, p.Theme, p.ThemeVariant, p.FontPreference, p.FontSize, p.LanguagePreference, p.NotificationsEnabled)
	return err
}
