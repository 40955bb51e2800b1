package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	rolesGroup := g.Group("/roles")
	{
		rolesGroup.POST("", h.Create)
		rolesGroup.GET("", h.List)
		rolesGroup.GET("/:id", h.Get)
	}
}
