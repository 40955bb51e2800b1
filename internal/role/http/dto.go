package http

import (
	"time"

	"github.com/nekogravitycat/user-management-backend/internal/role"
)

// CreateRoleRequest defines the payload for creating a role.
type CreateRoleRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// RoleResponse is the shape of role data returned in API responses.
type RoleResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRoleResponse(r *role.Role) RoleResponse {
	return RoleResponse{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}
