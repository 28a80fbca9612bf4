// Package domain contains entity types without transport or lifecycle logic.
package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
)

// AnonName labels connections that never supplied a display name.
const AnonName = "anon"

var (
	ErrUsernameTooShort = errors.New("username too short")
	ErrUsernameTooLong  = errors.New("username too long")
	ErrUsernameEmpty    = errors.New("username empty")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserID string

// User is a registered account. Live connections carry only the display
// name; the rest exists for the REST surface.
type User struct {
	ID           UserID    `json:"id" bson:"_id,omitempty"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	Role         Role      `json:"role" bson:"role"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

func ValidateUsername(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrUsernameEmpty
	}
	if len(name) < MinUsernameLen {
		return ErrUsernameTooShort
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

// DisplayName trims a client-supplied name and falls back to the anonymous
// label. Uniqueness of presence entries is keyed by connection, never by
// name, so duplicates are fine.
func DisplayName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return AnonName
	}
	return Truncate(name, MaxUsernameLen)
}
