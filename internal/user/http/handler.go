package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/user-management-backend/internal/pkg/request"
	"github.com/nekogravitycat/user-management-backend/internal/pkg/response"
	"github.com/nekogravitycat/user-management-backend/internal/user"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Create registers a new user.
// Username and email must be unique regardless of case.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.Create(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, SingleUserResponse{User: NewUserResponse(u)})
}

// Get retrieves a specific user by their ID.
func (h *UserHandler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SingleUserResponse{User: NewUserResponse(u)})
}

// List retrieves a paginated list of users with optional filtering
// by username substring, exact email and role name.
func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	res, err := h.userService.List(c.Request.Context(), req.Criteria(), req.PageRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, len(res.Items))
	for i, u := range res.Items {
		items[i] = NewUserResponse(u)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, res.PageIndex, res.PageSize, res.Total))
}

// All returns every user without pagination.
func (h *UserHandler) All(c *gin.Context) {
	users, err := h.userService.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}

// UpdateStatus changes the account status of a user.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	u, err := h.userService.UpdateStatus(c.Request.Context(), uri.ID, user.Status(body.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SingleUserResponse{User: NewUserResponse(u)})
}

// AssignRole grants the named role to a user. Granting a held role is a no-op.
func (h *UserHandler) AssignRole(c *gin.Context) {
	var uri RoleURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.AssignRole(c.Request.Context(), uri.ID, uri.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SingleUserResponse{User: NewUserResponse(u)})
}

// RemoveRole revokes the named role from a user.
func (h *UserHandler) RemoveRole(c *gin.Context) {
	var uri RoleURIRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	u, err := h.userService.RemoveRole(c.Request.Context(), uri.ID, uri.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SingleUserResponse{User: NewUserResponse(u)})
}
