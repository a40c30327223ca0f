// Package user defines account identities and their platform roles.
package user

import (
	"strings"
	"time"
)

// Role represents the platform role of a user account.
type Role int

const (
	// RoleUnspecified represents an invalid role.
	RoleUnspecified Role = iota
	// RoleStudent identifies a learner account.
	RoleStudent
	// RoleInstructor identifies a course-owning account.
	RoleInstructor
	// RoleAdmin identifies a platform operator account.
	RoleAdmin
)

// User represents an account referenced by enrollments, chat, and events.
type User struct {
	ID        int64
	Username  string
	Role      Role
	CreatedAt time.Time
}

// RoleLabel returns the string label for a role.
func RoleLabel(role Role) string {
	switch role {
	case RoleStudent:
		return "STUDENT"
	case RoleInstructor:
		return "INSTRUCTOR"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNSPECIFIED"
	}
}

// RoleFromLabel converts a role label to a Role value.
func RoleFromLabel(label string) Role {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "STUDENT":
		return RoleStudent
	case "INSTRUCTOR":
		return RoleInstructor
	case "ADMIN":
		return RoleAdmin
	default:
		return RoleUnspecified
	}
}
