package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// ErrInvalidCredentials is returned for any email/password mismatch.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service manages account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if !strings.Contains(email, "@") {
		return User{}, errors.New("a valid email is required")
	}
	if len(creds.Password) < minPasswordLength {
		return User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     strings.TrimSpace(creds.Username),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies email/password credentials.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err == nil {
		user.LastLogin = &now
	}

	return user, nil
}
