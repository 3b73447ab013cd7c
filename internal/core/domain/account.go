package domain

import (
	"strings"
	"time"
)

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"

	// DefaultRole is assigned to every account created through Register.
	DefaultRole = RoleUser
)

// Account models a registered user and its stored credential.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is a named permission group. Roles must exist before they are assigned.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoleAssignment maps one account to exactly one role.
type RoleAssignment struct {
	UserID string
	RoleID string
}

// Session is the result of a successful Login, Register or Refresh.
// It is never persisted.
type Session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// UsernameFor derives the display username of an account from its names.
func UsernameFor(firstName, lastName string) string {
	return strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName)
}
