package http

import (
	"time"

	"github.com/nekogravitycat/user-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/user-management-backend/internal/user"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	Username string `form:"username"`
	Email    string `form:"email"`
	Role     string `form:"role"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=username email created_at"`
}

// Criteria returns the search criteria carried by the query string.
func (r *ListUsersRequest) Criteria() *user.Criteria {
	return &user.Criteria{
		UsernameContains: r.Username,
		EmailEquals:      r.Email,
		RoleNameEquals:   r.Role,
	}
}

// PageRequest fills the fields that were not sent with the defaults.
func (r *ListUsersRequest) PageRequest() *user.PageRequest {
	p := user.DefaultPageRequest()
	if r.Page != nil {
		p.PageIndex = *r.Page
	}
	if r.PageSize != nil {
		p.PageSize = *r.PageSize
	}
	if r.SortBy != "" {
		p.SortBy = r.SortBy
	}
	if r.SortOrder != "" {
		p.SortOrder = r.SortOrder
	}
	return &p
}

// CreateUserRequest defines the payload for user creation.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateStatusRequest defines the payload for PATCH /users/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE SUSPENDED"`
}

// RoleURIRequest binds /users/:id/roles/:name.
type RoleURIRequest struct {
	ID   string `uri:"id" binding:"required,uuid"`
	Name string `uri:"name" binding:"required"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Roles     []RoleTag `json:"roles"`
}

// RoleTag is a brief representation of a role held by a user.
type RoleTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	roles := make([]RoleTag, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, RoleTag{ID: r.ID, Name: r.Name})
	}

	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		Roles:     roles,
	}
}

// SingleUserResponse wraps one user.
type SingleUserResponse struct {
	User UserResponse `json:"user"`
}
