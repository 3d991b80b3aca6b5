package entity

import (
	"strings"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
)

// Role is the closed classification of a User, fixed at registration.
type Role string

const (
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// Roles lists every valid role.
var Roles = []Role{RoleInstructor, RoleStudent}

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	switch r {
	case RoleInstructor, RoleStudent:
		return true
	default:
		return false
	}
}

// ParseRole accepts the wire form of a role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperr.New(apperr.KindInvalidInput, "role must be instructor or student")
	}
	return r, nil
}
