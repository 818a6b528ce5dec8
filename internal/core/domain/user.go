package domain

import (
	"errors"
	"time"
)

// Role is the coarse authority level attached to a user.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInsufficientRole = errors.New("insufficient role")
var ErrForbidden = errors.New("forbidden")
var ErrUserNotFound = errors.New("user not found")
var ErrRoleUnchanged = errors.New("user already has that role")
var ErrUnsupportedRole = errors.New("unsupported role for this operation")
var ErrUnavailable = errors.New("temporarily unavailable")
var ErrUserExists = errors.New("user already exists")
var ErrSuperAdminExists = errors.New("a SUPER_ADMIN already exists")

// User models an account holding credentials and a role.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claim is the decoded identity carried by a bearer token. It is trusted
// for the duration of one request and never persisted.
type Claim struct {
	SubjectID string `json:"sub"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}
