package secretlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/soulscribe/soulscribe/internal/entries"
)

const testKey = "test-lock-secret"

func newTestService(t *testing.T) (*Service, Repository, *entries.Service) {
	t.Helper()
	repo := NewMemoryRepository()
	entriesSvc := entries.NewService(entries.NewMemoryRepository())
	svc := NewService(repo, entriesSvc, nil, testKey, 5, 15*time.Minute, 30*time.Minute)
	return svc, repo, entriesSvc
}

func mustEnable(t *testing.T, svc *Service, userID, pin, question, answer string) {
	t.Helper()
	if err := svc.Enable(context.Background(), userID, pin, question, answer); err != nil {
		t.Fatalf("enable: %v", err)
	}
}

func TestVerifyPINSuccessIssuesUnlock(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "first pet", "rex")

	before := time.Now()
	unlock, err := svc.VerifyPIN(ctx, "user-1", "4821")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if unlock.Token == "" {
		t.Fatalf("expected an unlock token")
	}
	ttl := unlock.ExpiresAt.Sub(before)
	if ttl < 29*time.Minute || ttl > 31*time.Minute {
		t.Fatalf("expected ~30m expiry, got %s", ttl)
	}

	p, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.FailedAttempts != 0 || p.LockedUntil != nil {
		t.Fatalf("expected clean counters, got attempts=%d locked=%v", p.FailedAttempts, p.LockedUntil)
	}
}

func TestVerifyPINSuccessResetsCounter(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "first pet", "rex")

	for i := 0; i < 3; i++ {
		if _, err := svc.VerifyPIN(ctx, "user-1", "0000"); err == nil {
			t.Fatalf("expected wrong pin to fail")
		}
	}

	if _, err := svc.VerifyPIN(ctx, "user-1", "4821"); err != nil {
		t.Fatalf("verify after failures: %v", err)
	}

	p, _ := repo.Get(ctx, "user-1")
	if p.FailedAttempts != 0 || p.LockedUntil != nil {
		t.Fatalf("expected counter reset, got attempts=%d locked=%v", p.FailedAttempts, p.LockedUntil)
	}
}

func TestVerifyPINAttemptsThenLockout(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "first pet", "rex")

	for want := 4; want >= 1; want-- {
		_, err := svc.VerifyPIN(ctx, "user-1", "0000")
		var invalid *InvalidPINError
		if !errors.As(err, &invalid) {
			t.Fatalf("attempt with %d remaining: expected InvalidPINError, got %v", want, err)
		}
		if invalid.AttemptsRemaining != want {
			t.Fatalf("expected %d attempts remaining, got %d", want, invalid.AttemptsRemaining)
		}
	}

	// Fifth wrong attempt triggers the lockout.
	_, err := svc.VerifyPIN(ctx, "user-1", "0000")
	var locked *LockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedError on fifth attempt, got %v", err)
	}
	remaining := time.Until(locked.Until)
	if remaining < 14*time.Minute || remaining > 16*time.Minute {
		t.Fatalf("expected ~15m lockout, got %s", remaining)
	}

	// The correct PIN is still refused while locked out.
	if _, err := svc.VerifyPIN(ctx, "user-1", "4821"); !errors.As(err, &locked) {
		t.Fatalf("expected LockedError with correct pin during lockout, got %v", err)
	}
}

func TestVerifyPINFormat(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "first pet", "rex")

	for _, pin := range []string{"", "123", "12345", "12a4", "４８２１", "-123"} {
		if _, err := svc.VerifyPIN(ctx, "user-1", pin); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("pin %q: expected ErrInvalidFormat, got %v", pin, err)
		}
	}

	// Malformed input never touches the stored counters.
	p, _ := repo.Get(ctx, "user-1")
	if p.FailedAttempts != 0 {
		t.Fatalf("expected untouched counter, got %d", p.FailedAttempts)
	}
}

func TestVerifyPINNotConfigured(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.VerifyPIN(ctx, "ghost", "4821"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mustEnable(t, svc, "user-1", "4821", "first pet", "rex")
	if err := svc.Disable(ctx, "user-1"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := svc.VerifyPIN(ctx, "user-1", "4821"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured after disable, got %v", err)
	}

	p, _ := repo.Get(ctx, "user-1")
	if p.Enabled || p.PINHash != "" {
		t.Fatalf("expected cleared configuration after disable")
	}
}

func TestVerifyPINLockoutBoundary(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "first pet", "rex")

	until := time.Now().Add(time.Hour).UTC()
	p, _ := repo.Get(ctx, "user-1")
	p.LockedUntil = &until
	p.FailedAttempts = 5
	if err := repo.Upsert(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// One millisecond before expiry the attempt is refused.
	svc.now = func() time.Time { return until.Add(-time.Millisecond) }
	var locked *LockedError
	if _, err := svc.VerifyPIN(ctx, "user-1", "4821"); !errors.As(err, &locked) {
		t.Fatalf("expected LockedError just before expiry, got %v", err)
	}

	// Exactly at the lockout timestamp the attempt proceeds.
	svc.now = func() time.Time { return until }
	unlock, err := svc.VerifyPIN(ctx, "user-1", "4821")
	if err != nil {
		t.Fatalf("expected success exactly at lockout expiry, got %v", err)
	}
	if !unlock.ExpiresAt.Equal(until.Add(30 * time.Minute)) {
		t.Fatalf("expected expiry derived from the injected clock")
	}
}

func TestConcurrentWrongAttempts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "first pet", "rex")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.VerifyPIN(ctx, "user-1", "0000")
		}(i)
	}
	wg.Wait()

	p, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	// No lost updates and no overshoot: the counter lands exactly on the
	// maximum, with a single lockout stamp.
	if p.FailedAttempts != 5 {
		t.Fatalf("expected failedAttempts=5 after %d concurrent wrong attempts, got %d", n, p.FailedAttempts)
	}
	if p.LockedUntil == nil {
		t.Fatalf("expected a lockout to be set")
	}

	invalidCount := 0
	for _, err := range errs {
		var invalid *InvalidPINError
		var locked *LockedError
		switch {
		case errors.As(err, &invalid):
			invalidCount++
		case errors.As(err, &locked):
		default:
			t.Fatalf("unexpected verification error: %v", err)
		}
	}
	if invalidCount > 4 {
		t.Fatalf("at most 4 attempts can report attempts remaining, got %d", invalidCount)
	}
}

func TestRecoverAnswerNormalization(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "favorite city", "paris")

	for _, answer := range []string{"paris", "Paris", " paris ", "PARIS", "\tPaRiS\n"} {
		res, err := svc.RecoverWithAnswer(ctx, "user-1", answer, true)
		if err != nil {
			t.Fatalf("answer %q: %v", answer, err)
		}
		if !res.Success || res.Deleted {
			t.Fatalf("answer %q: expected match without deletion, got %+v", answer, res)
		}
	}
}

func TestRecoverMatchResetsCounters(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "favorite city", "paris")

	for i := 0; i < 3; i++ {
		_, _ = svc.VerifyPIN(ctx, "user-1", "0000")
	}

	res, err := svc.RecoverWithAnswer(ctx, "user-1", "paris", true)
	if err != nil || !res.Success {
		t.Fatalf("recover: res=%+v err=%v", res, err)
	}

	p, _ := repo.Get(ctx, "user-1")
	if p.FailedAttempts != 0 {
		t.Fatalf("expected counter reset after recovery match, got %d", p.FailedAttempts)
	}

	// A successful match permits a PIN change.
	if err := svc.SetPIN(ctx, "user-1", "9999"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	if _, err := svc.VerifyPIN(ctx, "user-1", "9999"); err != nil {
		t.Fatalf("verify new pin: %v", err)
	}
}

func TestRecoverMismatchDestroysPrivateEntries(t *testing.T) {
	svc, repo, entriesSvc := newTestService(t)
	ctx := context.Background()
	owner := "2f5d9c1e-7a40-4a6b-9b69-0f14f2b6e2a1"
	mustEnable(t, svc, owner, "4821", "favorite city", "paris")

	for i := 0; i < 2; i++ {
		if _, err := entriesSvc.Create(ctx, entries.CreateInput{UserID: owner, Content: "secret", IsPrivate: true}); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}
	if _, err := entriesSvc.Create(ctx, entries.CreateInput{UserID: owner, Content: "public"}); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	res, err := svc.RecoverWithAnswer(ctx, owner, "london", true)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if res.Success || !res.Deleted {
		t.Fatalf("expected {success:false deleted:true}, got %+v", res)
	}

	remaining, err := entriesSvc.List(ctx, owner, entries.ListFilter{IncludePrivate: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].IsPrivate {
		t.Fatalf("expected only the public entry to survive, got %d entries", len(remaining))
	}

	p, _ := repo.Get(ctx, owner)
	if p.Enabled || p.PINHash != "" || p.SecurityAnswerHash != "" || p.SecurityQuestion != "" {
		t.Fatalf("expected cleared lock configuration after wipe: %+v", p)
	}
}

func TestRecoverMismatchIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "favorite city", "paris")

	// Second run wipes an already-empty set and must report the same result.
	for i := 0; i < 2; i++ {
		res, err := svc.RecoverWithAnswer(ctx, "user-1", "wrong", true)
		if err != nil {
			t.Fatalf("recover %d: %v", i+1, err)
		}
		if res.Success || !res.Deleted {
			t.Fatalf("recover %d: expected {success:false deleted:true}, got %+v", i+1, res)
		}
	}
}

func TestRecoverMismatchWithoutDeleteFlag(t *testing.T) {
	svc, repo, entriesSvc := newTestService(t)
	ctx := context.Background()
	owner := "2f5d9c1e-7a40-4a6b-9b69-0f14f2b6e2a1"
	mustEnable(t, svc, owner, "4821", "favorite city", "paris")
	if _, err := entriesSvc.Create(ctx, entries.CreateInput{UserID: owner, Content: "secret", IsPrivate: true}); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	res, err := svc.RecoverWithAnswer(ctx, owner, "london", false)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if res.Success || res.Deleted {
		t.Fatalf("expected {success:false deleted:false}, got %+v", res)
	}

	left, _ := entriesSvc.List(ctx, owner, entries.ListFilter{IncludePrivate: true})
	if len(left) != 1 {
		t.Fatalf("expected private entry to survive, got %d", len(left))
	}
	p, _ := repo.Get(ctx, owner)
	if !p.Enabled {
		t.Fatalf("expected lock to stay enabled without the delete flag")
	}
}

func TestRecoverEmptyAnswerRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	mustEnable(t, svc, "user-1", "4821", "favorite city", "paris")

	if _, err := svc.RecoverWithAnswer(context.Background(), "user-1", "   ", true); !errors.Is(err, ErrAnswerRequired) {
		t.Fatalf("expected ErrAnswerRequired, got %v", err)
	}
}

type failingWiper struct{}

func (failingWiper) DeletePrivate(context.Context, string) (int64, error) {
	return 0, errors.New("store unavailable")
}

func TestRecoverDeletionFailureSurfaces(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, failingWiper{}, nil, testKey, 5, 15*time.Minute, 30*time.Minute)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "favorite city", "paris")

	if _, err := svc.RecoverWithAnswer(ctx, "user-1", "wrong", true); err == nil {
		t.Fatalf("expected deletion failure to surface")
	}

	// Deletion never completed, so the lock configuration must survive.
	p, _ := repo.Get(ctx, "user-1")
	if !p.Enabled {
		t.Fatalf("expected lock configuration untouched after failed wipe")
	}
}

func TestResetWithConfirmation(t *testing.T) {
	svc, repo, entriesSvc := newTestService(t)
	ctx := context.Background()
	owner := "2f5d9c1e-7a40-4a6b-9b69-0f14f2b6e2a1"
	mustEnable(t, svc, owner, "4821", "favorite city", "paris")
	if _, err := entriesSvc.Create(ctx, entries.CreateInput{UserID: owner, Content: "secret", IsPrivate: true}); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	// Anything but the exact literal is refused, case- and space-sensitively.
	for _, phrase := range []string{"", "delete", "Delete", "DELETE ", " DELETE", "DELETE\n"} {
		if _, err := svc.ResetWithConfirmation(ctx, owner, phrase); !errors.Is(err, ErrConfirmationMismatch) {
			t.Fatalf("phrase %q: expected ErrConfirmationMismatch, got %v", phrase, err)
		}
	}

	res, err := svc.ResetWithConfirmation(ctx, owner, "DELETE")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !res.Success || !res.Deleted {
		t.Fatalf("expected {success:true deleted:true}, got %+v", res)
	}

	left, _ := entriesSvc.List(ctx, owner, entries.ListFilter{IncludePrivate: true})
	if len(left) != 0 {
		t.Fatalf("expected private entries destroyed, got %d", len(left))
	}
	p, _ := repo.Get(ctx, owner)
	if p.Enabled {
		t.Fatalf("expected lock disabled after explicit reset")
	}
}

func TestEnableValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Enable(ctx, "user-1", "48212", "q", "a"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat for long pin, got %v", err)
	}
	if err := svc.Enable(ctx, "user-1", "4821", " ", "a"); !errors.Is(err, ErrAnswerRequired) {
		t.Fatalf("expected ErrAnswerRequired for blank question, got %v", err)
	}
	if err := svc.Enable(ctx, "user-1", "4821", "q", ""); !errors.Is(err, ErrAnswerRequired) {
		t.Fatalf("expected ErrAnswerRequired for blank answer, got %v", err)
	}
}

func TestSetPINRequiresEnabledLock(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "q", "a")
	if err := svc.Disable(ctx, "user-1"); err != nil {
		t.Fatalf("disable: %v", err)
	}

	if err := svc.SetPIN(ctx, "user-1", "1234"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestUnlockTokenIsDerived(t *testing.T) {
	svc, _, _ := newTestService(t)
	exp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	a := svc.unlockToken("user-1", exp)
	b := svc.unlockToken("user-1", exp)
	if a != b {
		t.Fatalf("token derivation must be deterministic")
	}
	if svc.unlockToken("user-2", exp) == a {
		t.Fatalf("tokens must differ per user")
	}
	if svc.unlockToken("user-1", exp.Add(time.Millisecond)) == a {
		t.Fatalf("tokens must differ per expiry")
	}
}

func TestQuestion(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	mustEnable(t, svc, "user-1", "4821", "favorite city", "paris")

	q, err := svc.Question(ctx, "user-1")
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if q != "favorite city" {
		t.Fatalf("expected stored question, got %q", q)
	}
}
