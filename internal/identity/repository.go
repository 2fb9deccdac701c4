package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateTokenVersion(ctx context.Context, id string, version int) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, email, username, password_hash, token_version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, userID, user.Email, user.Username, user.PasswordHash, user.TokenVersion, user.CreatedAt.UTC())
	return err
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, username, password_hash, token_version, created_at, last_login
        FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, email, username, password_hash, token_version, created_at, last_login
        FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// UpdateTokenVersion bumps the token version, invalidating outstanding tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET token_version = $1 WHERE id = $2`, version, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records the time of the most recent successful login.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), userID)
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		lastLogin *time.Time
		user      User
	)
	if err := row.Scan(&id, &user.Email, &user.Username, &user.PasswordHash, &user.TokenVersion, &createdAt, &lastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	user.LastLogin = lastLogin
	return user, nil
}
