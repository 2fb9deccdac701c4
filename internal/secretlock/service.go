package secretlock

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/soulscribe/soulscribe/internal/notification"
)

// ConfirmationPhrase is the literal a caller must type to trigger the
// explicit destructive reset. Compared case-sensitively, no trimming.
const ConfirmationPhrase = "DELETE"

// EntryWiper deletes all private journal entries for a user. Deleting an
// already-empty set is a no-op, not an error.
type EntryWiper interface {
	DeletePrivate(ctx context.Context, userID string) (int64, error)
}

// Service implements the secret lock flows: PIN verification with attempt
// limiting and lockout, security-answer recovery with destructive failure
// semantics, and lock setup/teardown.
type Service struct {
	repo        Repository
	entries     EntryWiper
	notifier    notification.Notifier
	key         []byte
	maxAttempts int
	lockout     time.Duration
	unlockTTL   time.Duration

	now func() time.Time
}

// NewService builds the secret lock service. key is the server-side secret
// for the keyed digests; policy values of zero fall back to 5 attempts,
// 15 minute lockout and 30 minute unlock.
func NewService(repo Repository, entries EntryWiper, notifier notification.Notifier, key string, maxAttempts int, lockout, unlockTTL time.Duration) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	if unlockTTL <= 0 {
		unlockTTL = 30 * time.Minute
	}
	return &Service{
		repo:        repo,
		entries:     entries,
		notifier:    notifier,
		key:         []byte(key),
		maxAttempts: maxAttempts,
		lockout:     lockout,
		unlockTTL:   unlockTTL,
		now:         time.Now,
	}
}

// VerifyPIN checks a submitted PIN against the stored digest, enforcing the
// lockout window and the failed-attempt limit. On success the counter is
// reset and a time-limited unlock token is issued.
func (s *Service) VerifyPIN(ctx context.Context, userID, pin string) (Unlock, error) {
	if !validPIN(pin) {
		return Unlock{}, ErrInvalidFormat
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Unlock{}, err
	}
	if !p.Enabled || p.PINHash == "" {
		return Unlock{}, ErrNotConfigured
	}

	now := s.now()
	// Strict before: an attempt arriving exactly at the lockout expiry is
	// treated as unlocked.
	if p.LockedUntil != nil && now.Before(*p.LockedUntil) {
		return Unlock{}, &LockedError{Until: *p.LockedUntil}
	}

	if !digestEqual(s.digest(pin), p.PINHash) {
		attempts, lockedUntil, err := s.repo.RecordFailure(ctx, userID, s.maxAttempts, s.lockout)
		if err != nil {
			return Unlock{}, err
		}
		if attempts >= s.maxAttempts && lockedUntil != nil {
			return Unlock{}, &LockedError{Until: *lockedUntil}
		}
		return Unlock{}, &InvalidPINError{AttemptsRemaining: s.maxAttempts - attempts}
	}

	if err := s.repo.ResetAttempts(ctx, userID); err != nil {
		return Unlock{}, err
	}

	expiresAt := now.Add(s.unlockTTL)
	return Unlock{Token: s.unlockToken(userID, expiresAt), ExpiresAt: expiresAt}, nil
}

// RecoverWithAnswer validates the security answer. On a match the caller may
// change the PIN; on a mismatch with deleteOnFailure set, every private
// entry is destroyed and the lock configuration cleared before the result is
// reported. Wrong answer means the product treats the caller as not the
// owner.
func (s *Service) RecoverWithAnswer(ctx context.Context, userID, answer string, deleteOnFailure bool) (RecoverResult, error) {
	if strings.TrimSpace(answer) == "" {
		return RecoverResult{}, ErrAnswerRequired
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return RecoverResult{}, err
	}

	// An empty stored hash (already-wiped configuration) can never match,
	// which keeps the destructive path idempotent under retry.
	if p.SecurityAnswerHash != "" && digestEqual(s.digest(normalizeAnswer(answer)), p.SecurityAnswerHash) {
		if err := s.repo.ResetAttempts(ctx, userID); err != nil {
			return RecoverResult{}, err
		}
		return RecoverResult{Success: true}, nil
	}

	if !deleteOnFailure {
		return RecoverResult{}, nil
	}

	// The wipe must complete before the mismatch is reported, so a caller
	// never observes a pending deletion.
	if err := s.wipe(ctx, userID); err != nil {
		return RecoverResult{}, err
	}
	return RecoverResult{Deleted: true}, nil
}

// ResetWithConfirmation runs the destructive reset unconditionally when the
// caller supplies the exact confirmation phrase.
func (s *Service) ResetWithConfirmation(ctx context.Context, userID, phrase string) (RecoverResult, error) {
	if phrase != ConfirmationPhrase {
		return RecoverResult{}, ErrConfirmationMismatch
	}
	if err := s.wipe(ctx, userID); err != nil {
		return RecoverResult{}, err
	}
	return RecoverResult{Success: true, Deleted: true}, nil
}

// Enable configures the lock for the first time (or re-arms it after a
// reset): hashes the PIN and normalized answer, enables the gate, zeroes the
// counters.
func (s *Service) Enable(ctx context.Context, userID, pin, question, answer string) error {
	if !validPIN(pin) {
		return ErrInvalidFormat
	}
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return ErrAnswerRequired
	}
	return s.repo.Upsert(ctx, Profile{
		UserID:             userID,
		PINHash:            s.digest(pin),
		SecurityQuestion:   strings.TrimSpace(question),
		SecurityAnswerHash: s.digest(normalizeAnswer(answer)),
		Enabled:            true,
	})
}

// SetPIN replaces the PIN, keeping the rest of the configuration. Only valid
// while the lock is enabled (i.e. after a successful recovery match).
func (s *Service) SetPIN(ctx context.Context, userID, pin string) error {
	if !validPIN(pin) {
		return ErrInvalidFormat
	}
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !p.Enabled {
		return ErrNotConfigured
	}
	p.PINHash = s.digest(pin)
	p.FailedAttempts = 0
	p.LockedUntil = nil
	return s.repo.Upsert(ctx, p)
}

// Disable turns the lock off and clears its configuration. Entries are kept.
func (s *Service) Disable(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

// Question returns the stored security question for display.
func (s *Service) Question(ctx context.Context, userID string) (string, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !p.Enabled {
		return "", ErrNotConfigured
	}
	return p.SecurityQuestion, nil
}

func (s *Service) wipe(ctx context.Context, userID string) error {
	deleted, err := s.entries.DeletePrivate(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete private entries: %w", err)
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear lock configuration: %w", err)
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPrivateWipe,
			Destination: userID,
			Body:        fmt.Sprintf("%d private entries destroyed by recovery reset", deleted),
		})
	}
	return nil
}

// digest computes the hex HMAC-SHA256 of value under the server key. The
// same construction covers PINs, normalized answers and unlock tokens.
func (s *Service) digest(value string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) unlockToken(userID string, expiresAt time.Time) string {
	return s.digest(fmt.Sprintf("%s.%d", userID, expiresAt.UnixMilli()))
}

func digestEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func validPIN(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
