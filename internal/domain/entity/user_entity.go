package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for identity.
// PasswordHash holds a bcrypt hash and never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// InstructorProjection is the public view of a course owner.
type InstructorProjection struct {
	ID    string
	Name  string
	Email string
}

func (u *User) Projection() InstructorProjection {
	return InstructorProjection{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NormalizeEmail gives the canonical form used for uniqueness and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
