package role

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/user-management-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "role not found")
	ErrNameTaken    = apperror.New(http.StatusConflict, "role name already exists")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "role name is required")
)

// Role is a named permission group that users can hold.
// Role names are unique regardless of case.
type Role struct {
	ID        string // UUID
	Name      string
	CreatedAt time.Time
}
