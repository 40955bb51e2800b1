package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all user-related routes.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler) {
	usersGroup := g.Group("/users")
	{
		usersGroup.POST("", h.Create)
		usersGroup.GET("", h.List)
		usersGroup.GET("/all", h.All)
		usersGroup.GET("/:id", h.Get)
		usersGroup.PATCH("/:id/status", h.UpdateStatus)
		usersGroup.PUT("/:id/roles/:name", h.AssignRole)
		usersGroup.DELETE("/:id/roles/:name", h.RemoveRole)
	}
}
