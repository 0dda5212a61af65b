package core

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user may do; the engines treat users as read-only input.
type Role string

const (
	RoleReader    Role = "reader"
	RoleLibrarian Role = "librarian"
)

// User represents a registered library user.
type User struct {
	Identity
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// BuildUser creates a new User.
func BuildUser(id uuid.UUID, name string, email string, passwordHash string, role Role, at time.Time) User {
	return User{
		Identity:     BuildIdentity(id, at),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
}
