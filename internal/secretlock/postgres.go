package secretlock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores credential state in the user_security table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed secret lock repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get fetches the credential profile for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (Profile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Profile{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT user_id, pin_hash, security_question, security_answer_hash,
        enabled, failed_attempts, locked_until, updated_at
        FROM user_security WHERE user_id = $1`, uid)

	var (
		id          uuid.UUID
		lockedUntil *time.Time
		updatedAt   time.Time
		p           Profile
	)
	if err := row.Scan(&id, &p.PINHash, &p.SecurityQuestion, &p.SecurityAnswerHash,
		&p.Enabled, &p.FailedAttempts, &lockedUntil, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.UserID = id.String()
	if lockedUntil != nil {
		t := lockedUntil.UTC()
		p.LockedUntil = &t
	}
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}

// Upsert stores the full credential configuration.
func (r *PostgresRepository) Upsert(ctx context.Context, p Profile) error {
	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO user_security
        (user_id, pin_hash, security_question, security_answer_hash, enabled, failed_attempts, locked_until, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now())
        ON CONFLICT (user_id) DO UPDATE SET
            pin_hash = EXCLUDED.pin_hash,
            security_question = EXCLUDED.security_question,
            security_answer_hash = EXCLUDED.security_answer_hash,
            enabled = EXCLUDED.enabled,
            failed_attempts = EXCLUDED.failed_attempts,
            locked_until = EXCLUDED.locked_until,
            updated_at = now()`,
		uid, p.PINHash, p.SecurityQuestion, p.SecurityAnswerHash, p.Enabled, p.FailedAttempts, p.LockedUntil)
	return err
}

// RecordFailure performs the increment-and-maybe-lock step in a single
// statement so two racing wrong attempts cannot read the same stale counter.
func (r *PostgresRepository) RecordFailure(ctx context.Context, userID string, maxAttempts int, lockout time.Duration) (int, *time.Time, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, nil, ErrNotFound
	}
	// The counter caps at maxAttempts and the lockout is stamped only when
	// no active lockout exists, so N racing wrong attempts produce
	// min(N, max) and a single transition into the locked state.
	row := r.db.QueryRow(ctx, `UPDATE user_security
        SET failed_attempts = LEAST(failed_attempts + 1, $2),
            locked_until = CASE WHEN failed_attempts + 1 >= $2
                    AND (locked_until IS NULL OR locked_until <= now())
                THEN now() + make_interval(secs => $3)
                ELSE locked_until END,
            updated_at = now()
        WHERE user_id = $1
        RETURNING failed_attempts, locked_until`,
		uid, maxAttempts, lockout.Seconds())

	var (
		attempts    int
		lockedUntil *time.Time
	)
	if err := row.Scan(&attempts, &lockedUntil); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, ErrNotFound
		}
		return 0, nil, err
	}
	if lockedUntil != nil {
		t := lockedUntil.UTC()
		lockedUntil = &t
	}
	return attempts, lockedUntil, nil
}

// ResetAttempts zeroes the counter and clears the lockout.
func (r *PostgresRepository) ResetAttempts(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE user_security
        SET failed_attempts = 0, locked_until = NULL, updated_at = now()
        WHERE user_id = $1`, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear wipes the lock configuration while keeping the row.
func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `UPDATE user_security
        SET pin_hash = '', security_question = '', security_answer_hash = '',
            enabled = FALSE, failed_attempts = 0, locked_until = NULL, updated_at = now()
        WHERE user_id = $1`, uid)
	return err
}
