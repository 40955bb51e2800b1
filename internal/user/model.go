package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/user-management-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrDuplicateUsername  = apperror.New(http.StatusConflict, "username already exists")
	ErrDuplicateEmail     = apperror.New(http.StatusConflict, "email already exists")
	ErrInvalidPageRequest = apperror.New(http.StatusBadRequest, "invalid page request")
	ErrValidationFailed   = apperror.New(http.StatusBadRequest, "validation failed")
	ErrInvalidStatus      = apperror.New(http.StatusBadRequest, "invalid user status")
)

// Status is the lifecycle state of a user account.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// User represents a user in the system.
type User struct {
	ID           string // UUID
	Username     string
	Email        string
	PasswordHash string
	Status       Status
	CreatedAt    time.Time
	Roles        []RoleBrief
}

// RoleBrief holds minimal role info attached to a user.
type RoleBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HasRole reports whether the user holds a role with the given name (case-insensitive).
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if fold(r.Name) == fold(name) {
			return true
		}
	}
	return false
}
