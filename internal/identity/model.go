package identity

import "time"

// User represents a registered journal owner.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	TokenVersion int
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Credentials carries signup/login input.
type Credentials struct {
	Email    string
	Password string
	Username string
}
